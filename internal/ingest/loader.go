package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/i2sales/insights/internal/csvkit"
	"github.com/i2sales/insights/internal/domain"
)

// NamedFile pairs a filename with its raw content.
type NamedFile struct {
	Name    string
	Content string
}

// DuplicateClientFileError reports a second client roster for one agent.
type DuplicateClientFileError struct {
	Agent string
}

func (e *DuplicateClientFileError) Error() string {
	return fmt.Sprintf("multiple client roster files for agent %q: provide exactly one", e.Agent)
}

// MissingFileSetError reports an agent whose bundle is incomplete. An
// agent needs at least one productivity file and exactly one roster.
type MissingFileSetError struct {
	Agent string
}

func (e *MissingFileSetError) Error() string {
	return fmt.Sprintf("incomplete file set for agent %q: each agent requires at least one productivity file and exactly one client roster", e.Agent)
}

// ErrNoValidFileSet is returned when a non-empty input recognized no
// agent at all.
var ErrNoValidFileSet = errors.New(`no valid file set found: check file naming, e.g. "produtividade_joao_01082024-31082024.csv"`)

// ReadDir reads every CSV file under dir concurrently. A single failed
// read aborts the whole batch with an error naming the file.
func ReadDir(ctx context.Context, dir string) ([]NamedFile, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("input directory is required")
	}

	paths := make([]string, 0, 64)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", dir, err)
	}
	sort.Strings(paths)

	files := make([]NamedFile, len(paths))
	g, _ := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				return fmt.Errorf("read file %q: %w", path, readErr)
			}
			files[i] = NamedFile{Name: filepath.Base(path), Content: string(data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

type agentFiles struct {
	productivity []periodContent
	client       *periodContent
}

type periodContent struct {
	period  domain.Period
	content string
}

// GroupFiles classifies every file by its name and assembles one
// all-or-nothing bundle per agent. Unrecognized filenames are skipped
// with a diagnostic; structural problems fail the whole batch.
func GroupFiles(files []NamedFile) ([]domain.AgentBundle, domain.Diagnostics, error) {
	var diags domain.Diagnostics

	byAgent := map[string]*agentFiles{}
	order := make([]string, 0, len(files))

	for _, file := range files {
		info, ok := ExtractFileInfo(file.Name)
		if !ok {
			diags.Add(domain.DiagUnrecognizedFilename, file.Name, "could not extract agent and period from filename; skipping")
			continue
		}

		entry := byAgent[info.AgentName]
		if entry == nil {
			entry = &agentFiles{}
			byAgent[info.AgentName] = entry
			order = append(order, info.AgentName)
		}

		switch info.Kind {
		case KindProductivity:
			entry.productivity = append(entry.productivity, periodContent{period: info.Period, content: file.Content})
		case KindClients:
			if entry.client != nil {
				return nil, diags, &DuplicateClientFileError{Agent: info.AgentName}
			}
			pc := periodContent{period: info.Period, content: file.Content}
			entry.client = &pc
		}
	}

	bundles := make([]domain.AgentBundle, 0, len(order))
	for _, name := range order {
		entry := byAgent[name]
		if len(entry.productivity) == 0 || entry.client == nil {
			return nil, diags, &MissingFileSetError{Agent: name}
		}

		sets := make([]domain.ProductivitySet, 0, len(entry.productivity))
		for _, pc := range entry.productivity {
			sets = append(sets, domain.ProductivitySet{
				Period: pc.period,
				Rows:   productivityRows(csvkit.Parse(pc.content)),
			})
		}

		clients, clientDiags := clientsFromTable(csvkit.Parse(entry.client.content), false)
		diags = append(diags, clientDiags...)

		bundles = append(bundles, domain.AgentBundle{
			Name:             name,
			ProductivitySets: sets,
			Clients:          clients,
		})
	}

	if len(bundles) == 0 && len(files) > 0 {
		return nil, diags, ErrNoValidFileSet
	}
	return bundles, diags, nil
}

// LoadDir is the full ingestion path: concurrent reads, then grouping.
func LoadDir(ctx context.Context, dir string) ([]domain.AgentBundle, domain.Diagnostics, error) {
	files, err := ReadDir(ctx, dir)
	if err != nil {
		return nil, nil, err
	}
	return GroupFiles(files)
}

func productivityRows(table csvkit.Table) []domain.ProductivityRow {
	rows := make([]domain.ProductivityRow, 0, len(table.Records))
	for _, record := range table.Records {
		rows = append(rows, domain.ProductivityRow{
			Date:              record.Text("Data"),
			Calls:             record.Int("Ligações"),
			EffectiveContacts: record.Int("Contatos Efetivos"),
			NonEffective:      record.Int("CNE"),
			Tratativas:        record.Int("Tratativas"),
			Documentations:    record.Int("Documentação"),
			Sales:             record.Int("Vendas"),
		})
	}
	return rows
}
