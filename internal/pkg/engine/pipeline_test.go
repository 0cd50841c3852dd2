package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valsync/valsync/entity"
	"github.com/valsync/valsync/pkg/notify"
)

type stubExtractor struct {
	raw map[string][]entity.Record
}

func (s *stubExtractor) ExtractAll(ctx context.Context, endpoints []string) map[string][]entity.Record {
	raw := make(map[string][]entity.Record, len(endpoints))
	for _, endpoint := range endpoints {
		raw[endpoint] = s.raw[endpoint]
	}
	return raw
}

type stubTransformer struct {
	got map[string][]entity.Record
}

func (s *stubTransformer) TransformAll(raw map[string][]entity.Record) map[string]*entity.Table {
	s.got = raw
	table := entity.NewTable(entity.TableAgents, entity.Column{Name: "uuid", Kind: entity.ColumnText})
	for range raw[entity.EndpointAgents] {
		table.AddRow("some-uuid")
	}
	return map[string]*entity.Table{entity.TableAgents: table}
}

type stubLoader struct {
	runIDs []string
	tables map[string]*entity.Table
	err    error
}

func (s *stubLoader) LoadAll(ctx context.Context, tables map[string]*entity.Table, runID string) error {
	s.runIDs = append(s.runIDs, runID)
	s.tables = tables
	return s.err
}

func testNotifier() *notify.Notifier {
	return notify.New(nil, nil, 2, "pipeline", "test")
}

func TestPipelineRun(t *testing.T) {

	extractor := &stubExtractor{raw: map[string][]entity.Record{
		entity.EndpointAgents: {entity.Record(`{"displayName": "Jett"}`)},
	}}
	transformer := &stubTransformer{}
	loader := &stubLoader{}

	p := NewPipeline(Config{Endpoints: []string{entity.EndpointAgents, entity.EndpointMaps}},
		extractor, transformer, loader, testNotifier())

	require.NoError(t, p.Run(context.Background()))

	// All configured endpoints were handed to the transformer, with keys
	// present even for empty results
	require.Len(t, transformer.got, 2)
	assert.Len(t, transformer.got[entity.EndpointAgents], 1)
	assert.Empty(t, transformer.got[entity.EndpointMaps])

	// Loader received the transformed tables and a timestamp-derived run id
	require.Len(t, loader.runIDs, 1)
	assert.Regexp(t, `^\d{8}_\d{6}$`, loader.runIDs[0])
	assert.Equal(t, 1, loader.tables[entity.TableAgents].NumRows())
}

func TestPipelineRunLoadFailure(t *testing.T) {

	loader := &stubLoader{err: errors.New("disk full")}
	p := NewPipeline(Config{}, &stubExtractor{}, &stubTransformer{}, loader, testNotifier())

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
