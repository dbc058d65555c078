package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"waymark/internal/model"
	"waymark/internal/store"
)

const (
	serverName         = "waymark"
	serverInstructions = "Read-only access to imported waymark stories. Use list_stories or search_stories to find a story id, " +
		"then get_story, validate_story or entity_usage on it. check_record tests a single record before it is saved."
)

// Querier is the read side of store.Store the tools need.
type Querier interface {
	GetStory(ctx context.Context, id string) (*store.StoryRecord, error)
	ListStories(ctx context.Context, tag string) ([]store.StorySummary, error)
	Search(ctx context.Context, query, tag string) ([]store.SearchResult, error)
}

type Options struct {
	Version string
	// Bounds limit location radii; the zero value means model.DefaultBounds.
	Bounds model.Bounds
	Logger zerolog.Logger
}

type Server struct {
	db     Querier
	bounds model.Bounds
	log    zerolog.Logger
	mcp    *sdk.Server
}

func NewServer(db Querier, opts Options) *Server {
	s := &Server{
		db:     db,
		bounds: boundsOrDefault(opts.Bounds),
		log:    opts.Logger.With().Str("component", "mcp").Logger(),
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    serverName,
			Version: opts.Version,
		}, &sdk.ServerOptions{
			Instructions: serverInstructions,
		}),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// Run serves until the transport closes or ctx is done.
func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	s.log.Info().Msg("server started")
	err := s.mcp.Run(ctx, transport)
	if err != nil && ctx.Err() == nil {
		s.log.Error().Err(err).Msg("server stopped")
		return err
	}
	s.log.Info().Msg("server stopped")
	return nil
}
