package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/porticus-lab/minerva-archive/internal/detail"
)

// ExportEntry joins one request with its sections and summary items for
// export.
type ExportEntry struct {
	Request  Request          `json:"request" yaml:"request"`
	Sections []detail.Section `json:"sections,omitempty" yaml:"sections,omitempty"`
	Items    []detail.Item    `json:"summary_items,omitempty" yaml:"summary_items,omitempty"`
}

// exportEntries assembles the full archive.
func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	reqs, err := s.Requests(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]ExportEntry, 0, len(reqs))
	for _, r := range reqs {
		sections, err := s.Sections(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		items, err := s.Items(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ExportEntry{Request: r, Sections: sections, Items: items})
	}
	return entries, nil
}

// ExportYAML writes the whole archive to w as YAML.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("store: marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportJSON writes the whole archive to w as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("store: encoding JSON: %w", err)
	}
	return nil
}
