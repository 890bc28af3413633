package repositories

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"pitstop-service/internal/domain"
	"pitstop-service/internal/platform/obs"
)

// Redis-backed implementation of the RestroomStore port. Each place is a
// hash at <prefix>restroom:<id>; <prefix>restrooms is the set of all ids.
type RedisRestroomStore struct {
	client redis.UniversalClient
	prefix string
	chunks chunkWriter
}

func NewRedisRestroomStore(client redis.UniversalClient, prefix string, batchSize, attempts int) *RedisRestroomStore {
	return &RedisRestroomStore{
		client: client,
		prefix: prefix,
		chunks: newChunkWriter("redis", batchSize, attempts),
	}
}

func (s *RedisRestroomStore) setKey() string { return s.prefix + "restrooms" }

func (s *RedisRestroomStore) placeKey(id string) string { return s.prefix + "restroom:" + id }

func (s *RedisRestroomStore) BulkInsert(ctx context.Context, places []domain.Place) (_ int, err error) {
	defer obs.Time(ctx, "redis.bulkInsert")(&err)

	return s.chunks.write(ctx, places, s.insertChunk)
}

// insertChunk writes a chunk inside one MULTI/EXEC so it lands atomically.
func (s *RedisRestroomStore) insertChunk(ctx context.Context, chunk []domain.Place) error {
	ids := make([]any, 0, len(chunk))

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range chunk {
			pipe.HSet(ctx, s.placeKey(p.ID), placeFields(p))
			ids = append(ids, p.ID)
		}
		pipe.SAdd(ctx, s.setKey(), ids...)
		return nil
	})
	return eris.Wrap(err, "redis: exec chunk")
}

func (s *RedisRestroomStore) ListAll(ctx context.Context) (_ []domain.Place, err error) {
	defer obs.Time(ctx, "redis.listAll")(&err)

	ids, err := s.client.SMembers(ctx, s.setKey()).Result()
	if err != nil {
		return nil, readError("redis", "list ids", err)
	}
	if len(ids) == 0 {
		return []domain.Place{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.placeKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, readError("redis", "load places", err)
	}

	places := make([]domain.Place, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			// id without a hash; the set and hashes are written together so
			// this only happens after manual deletion.
			continue
		}
		p, err := placeFromFields(ids[i], fields)
		if err != nil {
			return nil, readError("redis", "decode place "+ids[i], err)
		}
		places = append(places, p)
	}

	return places, nil
}

func (s *RedisRestroomStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisRestroomStore) Close() error {
	return s.client.Close()
}

func placeFields(p domain.Place) map[string]any {
	m := map[string]any{
		"name":        p.Name,
		"description": p.Description,
	}
	if p.Lat != nil {
		m["lat"] = strconv.FormatFloat(*p.Lat, 'f', -1, 64)
	}
	if p.Lon != nil {
		m["lon"] = strconv.FormatFloat(*p.Lon, 'f', -1, 64)
	}
	return m
}

func placeFromFields(id string, fields map[string]string) (domain.Place, error) {
	p := domain.Place{
		ID:          id,
		Name:        fields["name"],
		Description: fields["description"],
	}

	for key, dst := range map[string]**float64{"lat": &p.Lat, "lon": &p.Lon} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Place{}, eris.Wrapf(err, "parse %s", key)
		}
		*dst = &v
	}

	return p, nil
}
