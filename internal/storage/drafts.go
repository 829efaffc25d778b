package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"artwall/internal/domain"
)

// DraftStore saves admin form drafts as JSON files under drafts/{owner}/{key}.json.
type DraftStore struct {
	files *FileStore
}

// NewDraftStore wraps a FileStore.
func NewDraftStore(files *FileStore) *DraftStore {
	return &DraftStore{files: files}
}

func draftKey(owner, key string) (string, error) {
	owner, key = strings.TrimSpace(owner), strings.TrimSpace(key)
	if owner == "" || key == "" {
		return "", errors.New("storage: draft owner and key are required")
	}
	return "drafts/" + url.PathEscape(owner) + "/" + url.PathEscape(key) + ".json", nil
}

func (s *DraftStore) Load(ctx context.Context, owner, key string) (*domain.Draft, error) {
	path, err := draftKey(owner, key)
	if err != nil {
		return nil, err
	}
	data, err := s.files.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	var d domain.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("storage: decode draft: %w", err)
	}
	return &d, nil
}

func (s *DraftStore) Save(ctx context.Context, d domain.Draft) error {
	path, err := draftKey(d.Owner, d.Key)
	if err != nil {
		return err
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("storage: encode draft: %w", err)
	}
	_, err = s.files.Write(ctx, path, data)
	return err
}

func (s *DraftStore) Delete(ctx context.Context, owner, key string) error {
	path, err := draftKey(owner, key)
	if err != nil {
		return err
	}
	return s.files.Delete(ctx, path)
}
