package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/Lixing-Zhang/striv-storefront/backend/pkg/logger"
)

// Builtin names the catalog compiled into the binary.
const Builtin = "builtin"

//go:embed catalog.yaml
var builtinCatalog []byte

// Document is one seed file. YAML and JSON are both accepted.
type Document struct {
	Products []ProductSeed `yaml:"products"`
	Coupons  []CouponSeed  `yaml:"coupons"`
}

type ProductSeed struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Price       float64 `yaml:"price"`
	Category    string  `yaml:"category"`
	ImageURL    string  `yaml:"imageUrl"`
	Stock       int     `yaml:"stock"`
	Featured    bool    `yaml:"featured"`
	Discount    float64 `yaml:"discount"`
	Inactive    bool    `yaml:"inactive"`
}

type CouponSeed struct {
	Code            string     `yaml:"code"`
	Discount        float64    `yaml:"discount"`
	DiscountType    string     `yaml:"discountType"`
	MinimumPurchase float64    `yaml:"minimumPurchase"`
	ExpirationDate  *time.Time `yaml:"expirationDate"`
	ValidDays       int        `yaml:"validDays"`
	MaxUses         *int       `yaml:"maxUses"`
	Description     string     `yaml:"description"`
}

// Loader fetches seed documents from local paths or http(s) URLs.
type Loader struct {
	client *http.Client
	log    *logger.Logger
}

func NewLoader(log *logger.Logger) *Loader {
	return &Loader{
		client: &http.Client{Timeout: 2 * time.Minute},
		log:    log.With("component", "seed"),
	}
}

// Load fetches all sources concurrently and merges them in source order.
// Any failing source fails the whole load.
func (l *Loader) Load(ctx context.Context, sources []string) (*Document, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no seed sources provided")
	}

	docs := make([]*Document, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			start := time.Now()
			doc, err := l.loadOne(ctx, src)
			if err != nil {
				return fmt.Errorf("load %s: %w", src, err)
			}
			l.log.Debug("seed source loaded",
				"source", src,
				"products", len(doc.Products),
				"coupons", len(doc.Coupons),
				"duration", time.Since(start),
			)
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &Document{}
	for _, d := range docs {
		merged.Products = append(merged.Products, d.Products...)
		merged.Coupons = append(merged.Coupons, d.Coupons...)
	}
	return merged, nil
}

func (l *Loader) loadOne(ctx context.Context, src string) (*Document, error) {
	if src == Builtin {
		return decode(bytes.NewReader(builtinCatalog), false)
	}

	rc, err := l.open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return decode(rc, strings.HasSuffix(strings.ToLower(src), ".gz"))
}

func (l *Loader) open(ctx context.Context, src string) (io.ReadCloser, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func decode(r io.Reader, gzipped bool) (*Document, error) {
	if gzipped {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &doc, nil
}
