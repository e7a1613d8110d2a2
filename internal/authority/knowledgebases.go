package authority

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ListKnowledgeBases returns all knowledge bases.
func (c *Client) ListKnowledgeBases(ctx context.Context, credential string) ([]KnowledgeBase, error) {
	var kbs []KnowledgeBase
	if err := c.do(ctx, http.MethodGet, "/knowledgebase/", credential, nil, &kbs); err != nil {
		return nil, err
	}
	return kbs, nil
}

// GetKnowledgeBase fetches a single knowledge base by ID.
func (c *Client) GetKnowledgeBase(ctx context.Context, credential string, id int64) (KnowledgeBase, error) {
	var kb KnowledgeBase
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/knowledgebase/%d", id), credential, nil, &kb); err != nil {
		return KnowledgeBase{}, err
	}
	return kb, nil
}

// CreateKnowledgeBase creates a knowledge base.
func (c *Client) CreateKnowledgeBase(ctx context.Context, credential string, in KnowledgeBaseCreate) (KnowledgeBase, error) {
	if strings.TrimSpace(in.Name) == "" {
		return KnowledgeBase{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	var kb KnowledgeBase
	if err := c.do(ctx, http.MethodPost, "/knowledgebase/", credential, in, &kb); err != nil {
		return KnowledgeBase{}, err
	}
	return kb, nil
}

// UpdateKnowledgeBase edits a knowledge base.
func (c *Client) UpdateKnowledgeBase(ctx context.Context, credential string, id int64, in KnowledgeBaseUpdate) (KnowledgeBase, error) {
	var kb KnowledgeBase
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/knowledgebase/%d", id), credential, in, &kb); err != nil {
		return KnowledgeBase{}, err
	}
	return kb, nil
}

// DeleteKnowledgeBase removes a knowledge base. Deleting a nonexistent ID
// fails with ErrNotFound.
func (c *Client) DeleteKnowledgeBase(ctx context.Context, credential string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/knowledgebase/%d", id), credential, nil, nil)
}
