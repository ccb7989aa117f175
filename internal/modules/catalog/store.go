// README: Catalog sources: PostgreSQL tables or a YAML document on disk.
package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"transferquote/internal/modules/baseprice"
	"transferquote/internal/modules/fixedprice"
	"transferquote/internal/modules/region"
	"transferquote/internal/modules/surcharge"
)

type PostgresSource struct {
	regions    *region.Store
	basePrices *baseprice.Store
	fixed      *fixedprice.Store
	surcharges *surcharge.Store
}

func NewPostgresSource(db *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{
		regions:    region.NewStore(db),
		basePrices: baseprice.NewStore(db),
		fixed:      fixedprice.NewStore(db),
		surcharges: surcharge.NewStore(db),
	}
}

func (s *PostgresSource) Load(ctx context.Context) (Document, error) {
	var doc Document
	var err error
	if doc.Regions, err = s.regions.ListRecords(ctx); err != nil {
		return Document{}, err
	}
	if doc.BasePrices, err = s.basePrices.ListRecords(ctx); err != nil {
		return Document{}, err
	}
	if doc.FixedPrices, err = s.fixed.ListRecords(ctx); err != nil {
		return Document{}, err
	}
	if doc.Surcharges, err = s.surcharges.ListRecords(ctx); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// FileSource reads a YAML (or JSON) document; it is re-read on every Load.
type FileSource struct {
	Path string
}

func (s FileSource) Load(_ context.Context) (Document, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return Document{}, fmt.Errorf("read catalog %s: %w", s.Path, err)
	}
	return ParseDocument(raw)
}

func ParseDocument(raw []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("parse catalog: %w", err)
	}
	return doc, nil
}
