package database

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"exam-eligibility/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresClient_TableExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	client := &PostgresClient{DB: db}
	query := regexp.QuoteMeta(`SELECT to_regclass($1)::text`)

	mock.ExpectQuery(query).WithArgs("exams").
		WillReturnRows(sqlmock.NewRows([]string{"to_regclass"}).AddRow("exams"))
	mock.ExpectQuery(query).WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"to_regclass"}).AddRow(nil))

	ok, err := client.TableExists(context.Background(), "exams")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.TableExists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_DeletePrefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := &RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx))
	for _, k := range []string{"eligibility:corpus", "eligibility:corpus:v2", "other"} {
		require.NoError(t, mr.Set(k, "x"))
	}

	n, err := client.DeletePrefix(ctx, "eligibility:corpus")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.False(t, mr.Exists("eligibility:corpus"))
	assert.True(t, mr.Exists("other"))
}

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r), nil
}

func esResponse(status int, body string) *http.Response {
	h := http.Header{}
	h.Set("X-Elastic-Product", "Elasticsearch")
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestElasticsearchClient_EnsureIndex(t *testing.T) {
	t.Run("creates missing index", func(t *testing.T) {
		var created string
		transport := roundTripFunc(func(r *http.Request) *http.Response {
			switch r.Method {
			case http.MethodHead:
				return esResponse(http.StatusNotFound, "")
			case http.MethodPut:
				b, _ := io.ReadAll(r.Body)
				created = r.URL.Path + " " + string(b)
				return esResponse(http.StatusOK, `{"acknowledged":true}`)
			}
			return esResponse(http.StatusBadRequest, `{}`)
		})
		client, err := NewElasticsearch(config.ElasticsearchConfig{URL: "http://es:9200"}, transport)
		require.NoError(t, err)

		require.NoError(t, client.EnsureIndex(context.Background(), "eligibility-scans", `{"mappings":{}}`))
		assert.Equal(t, `/eligibility-scans {"mappings":{}}`, created)
	})

	t.Run("existing index is left alone", func(t *testing.T) {
		calls := 0
		transport := roundTripFunc(func(r *http.Request) *http.Response {
			calls++
			return esResponse(http.StatusOK, "")
		})
		client, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{"http://es:9200"}}, transport)
		require.NoError(t, err)

		require.NoError(t, client.EnsureIndex(context.Background(), "eligibility-scans", `{}`))
		assert.Equal(t, 1, calls)
	})
}
