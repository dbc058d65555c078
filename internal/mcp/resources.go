package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	storiesURI       = "waymark://stories"
	storyURIPrefix   = storiesURI + "/"
	storyURITemplate = storyURIPrefix + "{story_id}"
	jsonMIMEType     = "application/json"
)

func (s *Server) registerResources() {
	s.mcp.AddResource(&sdk.Resource{
		Name:        "stories",
		Title:       "Stories",
		Description: "Every stored story with its page and chapter counts",
		MIMEType:    jsonMIMEType,
		URI:         storiesURI,
	}, s.readStories)

	s.mcp.AddResourceTemplate(&sdk.ResourceTemplate{
		Name:        "story",
		Title:       "Story",
		Description: "One stored story with all of its records. URI format: " + storyURITemplate,
		MIMEType:    jsonMIMEType,
		URITemplate: storyURITemplate,
	}, s.readStory)
}

func (s *Server) readStories(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	_, output, err := s.handleListStories(ctx, nil, ListStoriesInput{})
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	return jsonResource(storiesURI, output)
}

func (s *Server) readStory(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	if req == nil || req.Params == nil || req.Params.URI == "" {
		return nil, fmt.Errorf("story id is required; use URI format %s", storyURITemplate)
	}
	uri := req.Params.URI
	storyID, err := storyIDFromURI(uri)
	if err != nil {
		return nil, err
	}

	_, output, err := s.handleGetStory(ctx, nil, StoryInput{StoryID: storyID})
	if err != nil {
		return nil, err
	}
	return jsonResource(uri, output)
}

func storyIDFromURI(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, storyURIPrefix)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", fmt.Errorf("invalid story URI %q; use URI format %s", uri, storyURITemplate)
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		return "", fmt.Errorf("invalid story URI %q: %w", uri, err)
	}
	return id, nil
}

func jsonResource(uri string, payload any) (*sdk.ReadResourceResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", uri, err)
	}
	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{URI: uri, MIMEType: jsonMIMEType, Text: string(data)},
		},
	}, nil
}
