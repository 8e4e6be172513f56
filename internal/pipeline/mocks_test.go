package pipeline_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/meteoaustral/goes-frames/internal/domain"
	"github.com/meteoaustral/goes-frames/internal/observability"
	"github.com/meteoaustral/goes-frames/internal/pipeline"
	"github.com/meteoaustral/goes-frames/internal/retry"
)

// --- mocks ---

// mockCatalog serves canned hour listings keyed by the bucket hour.
type mockCatalog struct {
	mu             sync.Mutex
	imagery        map[string][]domain.RemoteObject
	lightning      map[string][]domain.RemoteObject
	imageryErr     error
	lightningErr   error
	imageryCalls   int
	lightningCalls int
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		imagery:   make(map[string][]domain.RemoteObject),
		lightning: make(map[string][]domain.RemoteObject),
	}
}

func (m *mockCatalog) addImagery(objects ...domain.RemoteObject) {
	for _, o := range objects {
		m.imagery[hourKey(o.Scan)] = append(m.imagery[hourKey(o.Scan)], o)
	}
}

func (m *mockCatalog) addLightning(objects ...domain.RemoteObject) {
	for _, o := range objects {
		m.lightning[hourKey(o.Scan)] = append(m.lightning[hourKey(o.Scan)], o)
	}
}

func (m *mockCatalog) ListImageryHour(_ context.Context, _ domain.Channel, hour time.Time) ([]domain.RemoteObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imageryCalls++
	if m.imageryErr != nil {
		return nil, m.imageryErr
	}
	return m.imagery[hourKey(hour)], nil
}

func (m *mockCatalog) ListLightningHour(_ context.Context, hour time.Time) ([]domain.RemoteObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lightningCalls++
	if m.lightningErr != nil {
		return nil, m.lightningErr
	}
	return m.lightning[hourKey(hour)], nil
}

// mockFetcher hands out blobs without touching disk. Keys listed in fail
// return their error instead.
type mockFetcher struct {
	mu      sync.Mutex
	fail    map[string]error
	fetched []string
}

func (m *mockFetcher) Fetch(_ context.Context, obj domain.RemoteObject) (domain.CachedBlob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.fail[obj.Key]; ok {
		return domain.CachedBlob{}, err
	}
	m.fetched = append(m.fetched, obj.Key)
	return domain.CachedBlob{
		Key:    obj.Key,
		Path:   filepath.Join("/cache", filepath.Base(obj.Key)),
		Length: obj.Size,
	}, nil
}

func (m *mockFetcher) fetchedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.fetched...)
}

// mockLightningDecoder returns canned batches by blob key.
type mockLightningDecoder struct {
	batches map[string]*domain.LightningBatch
	fail    map[string]error
}

func (m *mockLightningDecoder) DecodeLightning(_ context.Context, blob domain.CachedBlob) (*domain.LightningBatch, error) {
	if err, ok := m.fail[blob.Key]; ok {
		return nil, err
	}
	return m.batches[blob.Key], nil
}

// mockImageryDecoder returns one shared raster for every blob.
type mockImageryDecoder struct {
	raster *domain.Raster
	fail   map[string]error
}

func (m *mockImageryDecoder) DecodeImagery(_ context.Context, blob domain.CachedBlob) (*domain.Raster, error) {
	if err, ok := m.fail[blob.Key]; ok {
		return nil, err
	}
	return m.raster, nil
}

// mockFrameAssembler stands in for the full Assembler in runner tests.
type mockFrameAssembler struct {
	mu      sync.Mutex
	set     domain.FrameSet
	err     error
	calls   int
	runIDs  []string
	block   chan struct{} // when non-nil, Assemble waits for it to close
	started chan struct{} // receives one signal per call when non-nil
}

func (m *mockFrameAssembler) Assemble(_ context.Context, req pipeline.AssembleRequest) (domain.FrameSet, error) {
	m.mu.Lock()
	m.calls++
	m.runIDs = append(m.runIDs, req.RunID)
	block, started, err := m.block, m.started, m.err
	m.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return domain.FrameSet{}, err
	}
	set := m.set
	set.RunID = req.RunID
	return set, nil
}

func (m *mockFrameAssembler) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockSink struct {
	mu   sync.Mutex
	sets []domain.FrameSet
}

func (m *mockSink) Put(set domain.FrameSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets = append(m.sets, set)
}

func (m *mockSink) all() []domain.FrameSet {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.FrameSet(nil), m.sets...)
}

type mockAnnouncer struct {
	mu        sync.Mutex
	announced []domain.FrameSet
	err       error
}

func (m *mockAnnouncer) Announce(_ context.Context, set domain.FrameSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.announced = append(m.announced, set)
	return nil
}

// --- helpers ---

// immediatePolicy retries without delays so failure paths stay fast.
var immediatePolicy = retry.Policy{MaxAttempts: 3}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func hourKey(t time.Time) string {
	return t.UTC().Format("2006-01-02T15")
}

// stamp renders a time in the sYYYYDDDHHMMSST digit form used by object keys.
func stamp(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%04d%03d%02d%02d%02d%d",
		t.Year(), t.YearDay(), t.Hour(), t.Minute(), t.Second(),
		t.Nanosecond()/int(time.Second/10))
}

func imageryKey(ch domain.Channel, scan, created time.Time) string {
	return fmt.Sprintf("%ss%s_e%s_c%s.nc",
		domain.ImageryHourPrefix("G19", ch, scan),
		stamp(scan), stamp(scan.Add(9*time.Minute)), stamp(created))
}

func lightningKey(scan, created time.Time) string {
	return fmt.Sprintf("%ss%s_e%s_c%s.nc",
		domain.LightningHourPrefix("G19", scan),
		stamp(scan), stamp(scan.Add(20*time.Second)), stamp(created))
}

func imageryObject(ch domain.Channel, scan time.Time) domain.RemoteObject {
	created := scan.Add(10 * time.Minute)
	return domain.RemoteObject{
		Key:     imageryKey(ch, scan, created),
		Product: domain.ProductImagery,
		Scan:    scan,
		End:     scan.Add(9 * time.Minute),
		Created: created,
		Size:    1 << 20,
	}
}

func lightningObject(scan time.Time) domain.RemoteObject {
	created := scan.Add(30 * time.Second)
	return domain.RemoteObject{
		Key:     lightningKey(scan, created),
		Product: domain.ProductLightning,
		Scan:    scan,
		End:     scan.Add(20 * time.Second),
		Created: created,
		Size:    64 << 10,
	}
}

func scanTimes(objects []domain.RemoteObject) []time.Time {
	times := make([]time.Time, len(objects))
	for i, o := range objects {
		times[i] = o.Scan
	}
	return times
}
