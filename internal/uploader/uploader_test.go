package uploader

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/model"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/worker"
)

// fakeStore counts calls and fails on demand, keyed by object key substring.
type fakeStore struct {
	mu            sync.Mutex
	uploads       map[string]int
	dirs          []string
	failUploads   map[string]int // key substring -> times to fail
	failEnsureDir string         // dir substring that fails
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		uploads:     make(map[string]int),
		failUploads: make(map[string]int),
	}
}

func (s *fakeStore) Upload(_ context.Context, key string, data io.Reader) error {
	if _, err := io.Copy(io.Discard, data); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[key]++
	for substr, remaining := range s.failUploads {
		if strings.Contains(key, substr) && remaining > 0 {
			s.failUploads[substr]--
			return errors.New("transient upload failure")
		}
	}
	return nil
}

func (s *fakeStore) Download(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeStore) Delete(context.Context, string) error { return nil }

func (s *fakeStore) Exists(context.Context, string) (bool, error) { return false, nil }

func (s *fakeStore) List(context.Context, string) ([]string, error) { return nil, nil }

func (s *fakeStore) EnsureDir(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failEnsureDir != "" && strings.Contains(prefix, s.failEnsureDir) {
		return errors.New("directory creation refused")
	}
	s.dirs = append(s.dirs, prefix)
	return nil
}

func (s *fakeStore) PublicURL(key string) string { return "https://cdn.test/" + key }

func (s *fakeStore) uploadAttempts(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads[key]
}

func startedPool(t *testing.T, workers int) *worker.Pool {
	t.Helper()
	pool := worker.NewPool(workers)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)
	return pool
}

func asset(name string) *model.AssetFile {
	return &model.AssetFile{Filename: name, Data: []byte("image-bytes")}
}

func TestUploadGroupsAllSucceed(t *testing.T) {
	store := newFakeStore()
	u := New(store, startedPool(t, 2), 3, time.Millisecond)

	groups := []Group{
		{Dir: "pofuduk/ayse/2024-03-12/ab_100/siyah", Files: []*model.AssetFile{asset("AB-100_1.jpg"), asset("AB-100_2.jpg")}},
		{Dir: "pofuduk/ayse/2024-03-12/ab_200/beyaz", Files: []*model.AssetFile{asset("AB-200_1.jpg")}},
	}

	results := u.UploadGroups(context.Background(), groups, nil)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.Success, r.Filename)
		assert.NotEmpty(t, r.URL)
	}
	assert.Len(t, store.dirs, 2)
}

func TestUploadGroupsPartialFailure(t *testing.T) {
	store := newFakeStore()
	store.failUploads["ab_100_2"] = 10 // beyond retry budget

	u := New(store, startedPool(t, 2), 2, time.Millisecond)

	groups := []Group{
		{Dir: "pofuduk/ayse/2024-03-12/ab_100/siyah", Files: []*model.AssetFile{
			asset("AB-100_1.jpg"), asset("AB-100_2.jpg"), asset("AB-100_3.jpg"),
		}},
	}

	results := u.UploadGroups(context.Background(), groups, nil)
	require.Len(t, results, 3)

	byName := make(map[string]model.UploadResult, len(results))
	for _, r := range results {
		byName[r.Filename] = r
	}
	assert.True(t, byName["AB-100_1.jpg"].Success)
	assert.False(t, byName["AB-100_2.jpg"].Success)
	assert.NotEmpty(t, byName["AB-100_2.jpg"].Error)
	assert.True(t, byName["AB-100_3.jpg"].Success, "a failed sibling must not abort later files")
}

func TestUploadRetriesTransientFailure(t *testing.T) {
	store := newFakeStore()
	store.failUploads["ab_100_1"] = 2 // succeeds on the third attempt

	u := New(store, startedPool(t, 1), 3, time.Millisecond)

	groups := []Group{
		{Dir: "pofuduk/ayse/2024-03-12/ab_100/siyah", Files: []*model.AssetFile{asset("AB-100_1.jpg")}},
	}

	results := u.UploadGroups(context.Background(), groups, nil)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, 3, store.uploadAttempts("pofuduk/ayse/2024-03-12/ab_100/siyah/ab_100_1.jpg"))
}

func TestUploadGroupsEnsureDirFailureFailsWholeGroup(t *testing.T) {
	store := newFakeStore()
	store.failEnsureDir = "ab_100"

	u := New(store, startedPool(t, 2), 2, time.Millisecond)

	groups := []Group{
		{Dir: "pofuduk/ayse/2024-03-12/ab_100/siyah", Files: []*model.AssetFile{asset("AB-100_1.jpg"), asset("AB-100_2.jpg")}},
		{Dir: "pofuduk/ayse/2024-03-12/ab_200/beyaz", Files: []*model.AssetFile{asset("AB-200_1.jpg")}},
	}

	results := u.UploadGroups(context.Background(), groups, nil)
	require.Len(t, results, 3)

	var failed []string
	for _, r := range results {
		if !r.Success {
			failed = append(failed, r.Filename)
		}
	}
	sort.Strings(failed)
	assert.Equal(t, []string{"AB-100_1.jpg", "AB-100_2.jpg"}, failed)
	assert.Zero(t, store.uploadAttempts("pofuduk/ayse/2024-03-12/ab_100/siyah/ab_100_1.jpg"))
}

func TestUploadGroupsInvokesCallbackPerFile(t *testing.T) {
	store := newFakeStore()
	u := New(store, startedPool(t, 2), 2, time.Millisecond)

	groups := []Group{
		{Dir: "pofuduk/ayse/2024-03-12/ab_100/siyah", Files: []*model.AssetFile{asset("AB-100_1.jpg"), asset("AB-100_2.jpg")}},
	}

	var mu sync.Mutex
	var seen []string
	u.UploadGroups(context.Background(), groups, func(r model.UploadResult) {
		mu.Lock()
		seen = append(seen, r.Filename)
		mu.Unlock()
	})

	assert.Len(t, seen, 2)
}
