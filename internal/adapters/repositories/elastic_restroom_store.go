package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/olivere/elastic/v7"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"pitstop-service/internal/domain"
	"pitstop-service/internal/platform/obs"
	"pitstop-service/internal/platform/retry"
)

const restroomMapping = `{
  "mappings": {
    "properties": {
      "name":        {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "description": {"type": "text"},
      "lat":         {"type": "double"},
      "lon":         {"type": "double"},
      "location":    {"type": "geo_point"}
    }
  }
}`

const scrollPageSize = 1000

type restroomDoc struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Lat         *float64          `json:"lat,omitempty"`
	Lon         *float64          `json:"lon,omitempty"`
	Location    *elastic.GeoPoint `json:"location,omitempty"`
}

// Elasticsearch-backed implementation of the RestroomStore port.
type ElasticRestroomStore struct {
	Client *elastic.Client
	Index  string
	chunks chunkWriter
}

// NewElasticClient connects without sniffing so single-node and proxied
// clusters work.
func NewElasticClient(url string, hc *http.Client) (*elastic.Client, error) {
	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(url),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
	}
	if hc != nil {
		opts = append(opts, elastic.SetHttpClient(hc))
	}

	client, err := elastic.NewClient(opts...)
	if err != nil {
		return nil, eris.Wrapf(err, "elastic: connect %s", url)
	}
	return client, nil
}

func NewElasticRestroomStore(client *elastic.Client, index string, batchSize, attempts int) *ElasticRestroomStore {
	if index == "" {
		index = restroomsTable
	}

	w := newChunkWriter("elastic", batchSize, attempts)
	w.retry.ShouldRetry = isTransientElastic

	return &ElasticRestroomStore{Client: client, Index: index, chunks: w}
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (es *ElasticRestroomStore) EnsureIndex(ctx context.Context) error {
	exists, err := es.Client.IndexExists(es.Index).Do(ctx)
	if err != nil {
		return eris.Wrapf(err, "elastic: check index %s", es.Index)
	}
	if exists {
		return nil
	}

	created, err := es.Client.CreateIndex(es.Index).BodyString(restroomMapping).Do(ctx)
	if err != nil {
		return eris.Wrapf(err, "elastic: create index %s", es.Index)
	}
	if !created.Acknowledged {
		zap.L().Warn("create index was not acknowledged",
			zap.String("component", "repositories.elastic"),
			zap.String("index", es.Index),
		)
	}
	return nil
}

func (es *ElasticRestroomStore) BulkInsert(ctx context.Context, places []domain.Place) (_ int, err error) {
	defer obs.Time(ctx, "elastic.bulkInsert")(&err)

	return es.chunks.write(ctx, places, es.insertChunk)
}

// insertChunk sends one _bulk request; any failed item fails the chunk.
// Items are keyed by id, so a retried chunk overwrites rather than duplicates.
func (es *ElasticRestroomStore) insertChunk(ctx context.Context, chunk []domain.Place) error {
	bulk := es.Client.Bulk().Index(es.Index).Refresh("wait_for")
	for _, p := range chunk {
		bulk.Add(elastic.NewBulkIndexRequest().Id(p.ID).Doc(toDoc(p)))
	}

	resp, err := bulk.Do(ctx)
	if err != nil {
		return eris.Wrap(err, "elastic: bulk request")
	}

	if failed := resp.Failed(); len(failed) > 0 {
		first := failed[0]
		reason := "unknown"
		if first.Error != nil {
			reason = first.Error.Type + ": " + first.Error.Reason
		}
		err := eris.Errorf("elastic: %d of %d items failed, first %s: %s", len(failed), len(chunk), first.Id, reason)
		if retry.IsTransientStatus(first.Status) {
			return retry.Transient(err, first.Status)
		}
		return err
	}
	return nil
}

// ListAll walks the index with the scroll API.
func (es *ElasticRestroomStore) ListAll(ctx context.Context) (_ []domain.Place, err error) {
	defer obs.Time(ctx, "elastic.listAll")(&err)

	scroll := es.Client.Scroll(es.Index).
		Query(elastic.NewMatchAllQuery()).
		Size(scrollPageSize)
	defer func() { _ = scroll.Clear(context.Background()) }()

	places := make([]domain.Place, 0, 64)
	for {
		res, err := scroll.Do(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if elastic.IsNotFound(err) {
				return []domain.Place{}, nil
			}
			return nil, readError("elastic", "scroll", err)
		}

		for _, hit := range res.Hits.Hits {
			var doc restroomDoc
			if err := json.Unmarshal(hit.Source, &doc); err != nil {
				return nil, readError("elastic", "decode hit "+hit.Id, err)
			}
			places = append(places, fromDoc(hit.Id, doc))
		}
	}

	return places, nil
}

func (es *ElasticRestroomStore) Ping(ctx context.Context) error {
	_, err := es.Client.ClusterHealth().Do(ctx)
	return err
}

func (es *ElasticRestroomStore) Close() error {
	es.Client.Stop()
	return nil
}

func toDoc(p domain.Place) restroomDoc {
	doc := restroomDoc{Name: p.Name, Description: p.Description, Lat: p.Lat, Lon: p.Lon}
	if c, ok := p.Coordinates(); ok {
		doc.Location = elastic.GeoPointFromLatLon(c.Lat, c.Lon)
	}
	return doc
}

func fromDoc(id string, doc restroomDoc) domain.Place {
	return domain.Place{
		ID:          id,
		Name:        doc.Name,
		Description: doc.Description,
		Lat:         doc.Lat,
		Lon:         doc.Lon,
	}
}

func isTransientElastic(err error) bool {
	if retry.IsTransient(err) || elastic.IsConnErr(err) || elastic.IsTimeout(err) {
		return true
	}
	var e *elastic.Error
	if errors.As(err, &e) {
		return retry.IsTransientStatus(e.Status)
	}
	return strings.Contains(err.Error(), "no available connection")
}
