package matcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"socialstorm/internal/providers"
	"socialstorm/internal/providers/library"
	"socialstorm/internal/subjects"
	"socialstorm/internal/variety"
)

type fakeProvider struct {
	source providers.Source
	video  bool
	hits   []providers.Hit

	mu            sync.Mutex
	searches      int
	queries       []string
	failDownloads map[string]bool
	block         bool
}

func (f *fakeProvider) Name() providers.Source { return f.source }

func (f *fakeProvider) ServesVideo() bool { return f.video }

func (f *fakeProvider) Search(ctx context.Context, subject string, _ providers.Excluder) ([]providers.Hit, error) {
	f.mu.Lock()
	f.searches++
	f.queries = append(f.queries, subject)
	block := f.block
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return append([]providers.Hit(nil), f.hits...), nil
}

func (f *fakeProvider) Download(_ context.Context, hit providers.Hit, destDir string) (string, error) {
	f.mu.Lock()
	fail := f.failDownloads[hit.URL]
	f.mu.Unlock()
	if fail {
		return "", errors.New("file too small")
	}
	return filepath.Join(destDir, filepath.Base(hit.URL)), nil
}

func (f *fakeProvider) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searches
}

func (f *fakeProvider) queryLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (f *fakeProvider) sawQuery(query string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.queries {
		if q == query {
			return true
		}
	}
	return false
}

type fakeSynth struct{ fail bool }

func (f fakeSynth) Render(_ context.Context, imagePath, destDir string) (string, error) {
	if f.fail {
		return "", errors.New("render failed")
	}
	stem := filepath.Base(imagePath)
	return filepath.Join(destDir, stem+"_kenburns.mp4"), nil
}

func videoHit(source providers.Source, url, title string) providers.Hit {
	return providers.Hit{Provider: source, URL: url, Title: title, IsVideo: true, Width: 1080, Height: 1920, DurationSec: 10}
}

func photoHit(source providers.Source, url, title string) providers.Hit {
	return providers.Hit{Provider: source, URL: url, Title: title, Width: 2000, Height: 3000}
}

func seedLibrary(t *testing.T, names ...string) *library.Provider {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("media"), 0o644); err != nil {
			t.Fatalf("seed library: %v", err)
		}
	}
	return library.New(library.NewDirCatalog(dir), nil)
}

func newOrchestrator(t *testing.T, providerList []providers.Provider, lib *library.Provider, renderer Synthesizer, opts Options) *Orchestrator {
	t.Helper()
	return New(providerList, lib, nil, nil, renderer, nil, nil, opts, nil)
}

func request(sceneIndex int, subject string, t *testing.T) SceneRequest {
	return SceneRequest{
		SceneIndex: sceneIndex,
		Subject:    subjects.Text(subject),
		SceneText:  subject,
		WorkDir:    t.TempDir(),
	}
}

func TestVideoFirstPolicy(t *testing.T) {
	videoProv := &fakeProvider{source: providers.SourcePexelsVideo, video: true,
		hits: []providers.Hit{videoHit(providers.SourcePexelsVideo, "https://cdn.example/mountain_gorilla.mp4", "mountain gorilla feeding")}}
	photoProv := &fakeProvider{source: providers.SourcePexelsPhoto,
		hits: []providers.Hit{photoHit(providers.SourcePexelsPhoto, "https://cdn.example/mountain_gorilla.jpg", "mountain gorilla portrait")}}

	orch := newOrchestrator(t, []providers.Provider{videoProv, photoProv}, nil, fakeSynth{}, Options{})
	job := NewJobContext()

	res := orch.Resolve(context.Background(), job, request(0, "mountain gorilla", t))
	if !res.Resolved() {
		t.Fatal("Resolve() returned null with a qualifying video available")
	}
	if !res.IsVideo || res.Synthesized {
		t.Fatalf("resolution = %+v, want a real video, never a synthesized image", res)
	}
	if res.Provider != providers.SourcePexelsVideo {
		t.Errorf("Provider = %q, want the video source", res.Provider)
	}
	if photoProv.searchCount() != 0 {
		t.Errorf("photo tier searched %d times, want 0 when the video tier delivers", photoProv.searchCount())
	}
}

func TestLandmarkFastPathSkipsStockAPIs(t *testing.T) {
	stock := &fakeProvider{source: providers.SourcePexelsVideo, video: true,
		hits: []providers.Hit{videoHit(providers.SourcePexelsVideo, "https://cdn.example/paris.mp4", "paris city")}}
	lib := seedLibrary(t, "eiffel_tower_portrait.mp4", "louvre.mp4")

	orch := newOrchestrator(t, []providers.Provider{stock}, lib, nil, Options{})
	job := NewJobContext()

	res := orch.Resolve(context.Background(), job, request(0, "Eiffel Tower", t))
	if res.Locator != "eiffel_tower_portrait.mp4" {
		t.Fatalf("Locator = %q, want the library key via the landmark fast path", res.Locator)
	}
	if res.Provider != providers.SourceLibrary {
		t.Errorf("Provider = %q, want library", res.Provider)
	}
	if stock.searchCount() != 0 {
		t.Errorf("stock API searched %d times, want 0 on the fast path", stock.searchCount())
	}
}

func TestNoRepeatWithinJob(t *testing.T) {
	prov := &fakeProvider{source: providers.SourcePexelsVideo, video: true,
		hits: []providers.Hit{videoHit(providers.SourcePexelsVideo, "https://cdn.example/mountain_gorilla.mp4", "mountain gorilla feeding")}}

	orch := newOrchestrator(t, []providers.Provider{prov}, nil, nil, Options{ProviderTimeout: time.Second, SceneBudget: 5 * time.Second})
	job := NewJobContext()

	first := orch.Resolve(context.Background(), job, request(0, "mountain gorilla", t))
	if !first.Resolved() {
		t.Fatal("first scene unresolved")
	}
	second := orch.Resolve(context.Background(), job, request(1, "mountain gorilla", t))
	if second.Locator == first.Locator && second.Locator != "" {
		t.Fatalf("second scene returned the already-consumed locator %q", second.Locator)
	}
}

func TestRepetitionWindowIsPerJob(t *testing.T) {
	prov := &fakeProvider{source: providers.SourcePexelsVideo, video: true,
		hits: []providers.Hit{
			videoHit(providers.SourcePexelsVideo, "https://cdn.example/mountain_gorilla_1.mp4", "mountain gorilla feeding"),
			videoHit(providers.SourcePexelsVideo, "https://cdn.example/mountain_gorilla_2.mp4", "mountain gorilla grooming"),
			videoHit(providers.SourcePexelsVideo, "https://cdn.example/mountain_gorilla_3.mp4", "mountain gorilla resting"),
		}}

	blocker := variety.NewBlocker(nil, nil)
	orch := New([]providers.Provider{prov}, nil, nil, blocker, nil, nil, nil,
		Options{ProviderTimeout: time.Second, SceneBudget: 5 * time.Second}, nil)

	firstJob := NewJobContext()
	for scene := 0; scene < 2; scene++ {
		if res := orch.Resolve(context.Background(), firstJob, request(scene, "mountain gorilla", t)); !res.Resolved() {
			t.Fatalf("first job scene %d unresolved", scene)
		}
	}
	orch.Resolve(context.Background(), firstJob, request(2, "mountain gorilla", t))
	if !prov.sawQuery("mountain gorilla from above") {
		t.Fatal("first job's third repeat was not substituted")
	}

	queriesBefore := len(prov.queryLog())
	secondJob := NewJobContext()
	res := orch.Resolve(context.Background(), secondJob, request(0, "mountain gorilla", t))
	if res.Subject != "mountain gorilla" {
		t.Fatalf("fresh job resolved subject %q, want the plain subject", res.Subject)
	}
	queries := prov.queryLog()[queriesBefore:]
	if len(queries) == 0 || queries[0] != "mountain gorilla" {
		t.Fatalf("fresh job searched %v, want the plain subject first", queries)
	}
}

func TestIdempotentCacheHit(t *testing.T) {
	prov := &fakeProvider{source: providers.SourcePexelsVideo, video: true,
		hits: []providers.Hit{videoHit(providers.SourcePexelsVideo, "https://cdn.example/mountain_gorilla.mp4", "mountain gorilla feeding")}}

	orch := newOrchestrator(t, []providers.Provider{prov}, nil, nil, Options{})
	job := NewJobContext()
	req := request(2, "mountain gorilla", t)

	first := orch.Resolve(context.Background(), job, req)
	if !first.Resolved() {
		t.Fatal("first call unresolved")
	}
	searchesAfterFirst := prov.searchCount()

	second := orch.Resolve(context.Background(), job, req)
	if second.Locator != first.Locator {
		t.Fatalf("retry returned %q, want the cached %q", second.Locator, first.Locator)
	}
	if !second.FromCache {
		t.Error("retry resolution not flagged FromCache")
	}
	if prov.searchCount() != searchesAfterFirst {
		t.Errorf("retry issued %d new searches, want 0", prov.searchCount()-searchesAfterFirst)
	}
}

func TestBoundedTerminationWithHangingProvider(t *testing.T) {
	hanging := &fakeProvider{source: providers.SourcePexelsVideo, video: true, block: true}

	orch := newOrchestrator(t, []providers.Provider{hanging}, nil, nil, Options{
		ProviderTimeout: 50 * time.Millisecond,
		SceneBudget:     300 * time.Millisecond,
	})
	job := NewJobContext()

	started := time.Now()
	res := orch.Resolve(context.Background(), job, request(0, "mountain gorilla", t))
	elapsed := time.Since(started)

	if res.Resolved() {
		t.Fatalf("Resolve() = %+v, want null with only a hanging provider", res)
	}
	if elapsed > 3*time.Second {
		t.Fatalf("Resolve() took %v, budget not enforced", elapsed)
	}
	if !job.IsUnmatchable(0, "mountain gorilla") {
		t.Error("exhaustion did not record a negative-cache entry")
	}
}

func TestValidationFailureTriesNextCandidate(t *testing.T) {
	prov := &fakeProvider{source: providers.SourcePexelsVideo, video: true,
		hits: []providers.Hit{
			videoHit(providers.SourcePexelsVideo, "https://cdn.example/mountain_gorilla_best.mp4", "mountain gorilla feeding"),
			videoHit(providers.SourcePexelsVideo, "https://cdn.example/gorilla_trek.mp4", "gorilla trekking uganda"),
		},
		failDownloads: map[string]bool{"https://cdn.example/mountain_gorilla_best.mp4": true},
	}

	orch := newOrchestrator(t, []providers.Provider{prov}, nil, nil, Options{})
	job := NewJobContext()

	res := orch.Resolve(context.Background(), job, request(0, "mountain gorilla", t))
	if !res.Resolved() {
		t.Fatal("Resolve() returned null, want the next-best candidate")
	}
	if filepath.Base(res.Locator) != "gorilla_trek.mp4" {
		t.Fatalf("Locator = %q, want the second-ranked candidate after validation failure", res.Locator)
	}
}

func TestGenericSubjectNeverSearched(t *testing.T) {
	prov := &fakeProvider{source: providers.SourcePexelsVideo, video: true,
		hits: []providers.Hit{videoHit(providers.SourcePexelsVideo, "https://cdn.example/mountain_gorillas.mp4", "mountain gorillas in rwanda")}}

	orch := newOrchestrator(t, []providers.Provider{prov}, nil, nil, Options{})
	job := NewJobContext()

	req := SceneRequest{
		SceneIndex: 0,
		Subject:    subjects.Text("person"),
		SceneText:  "person",
		MainTopic:  "mountain gorillas",
		WorkDir:    t.TempDir(),
	}
	res := orch.Resolve(context.Background(), job, req)
	if prov.sawQuery("person") {
		t.Fatal("provider received the raw generic query")
	}
	if !prov.sawQuery("mountain gorillas") {
		t.Errorf("provider queries = %v, want promotion to the main topic", prov.queries)
	}
	if !res.Resolved() {
		t.Error("Resolve() returned null despite a topic match")
	}
}

func TestPhotoTierSynthesisFallback(t *testing.T) {
	photoProv := &fakeProvider{source: providers.SourcePixabayPhoto,
		hits: []providers.Hit{photoHit(providers.SourcePixabayPhoto, "https://cdn.example/great_wall.jpg", "great wall of china")}}

	orch := newOrchestrator(t, []providers.Provider{photoProv}, nil, fakeSynth{}, Options{})
	job := NewJobContext()

	res := orch.Resolve(context.Background(), job, request(0, "great wall of china", t))
	if !res.Resolved() {
		t.Fatal("Resolve() returned null, want a synthesized clip")
	}
	if !res.Synthesized || !res.IsVideo {
		t.Fatalf("resolution = %+v, want synthesized video", res)
	}
	if !job.Excluded("https://cdn.example/great_wall.jpg") {
		t.Error("source image not marked used after synthesis")
	}
}

func TestSynthFailureWithoutOverrideYieldsNoImage(t *testing.T) {
	photoProv := &fakeProvider{source: providers.SourcePixabayPhoto,
		hits: []providers.Hit{photoHit(providers.SourcePixabayPhoto, "https://cdn.example/great_wall.jpg", "great wall of china")}}

	orch := newOrchestrator(t, []providers.Provider{photoProv}, nil, fakeSynth{fail: true}, Options{})
	job := NewJobContext()

	res := orch.Resolve(context.Background(), job, request(0, "great wall of china", t))
	if res.Locator != "" {
		t.Fatalf("Locator = %q, want no bare image without the raw-image override", res.Locator)
	}
}

func TestSynthFailureWithOverrideReturnsImage(t *testing.T) {
	photoProv := &fakeProvider{source: providers.SourcePixabayPhoto,
		hits: []providers.Hit{photoHit(providers.SourcePixabayPhoto, "https://cdn.example/great_wall.jpg", "great wall of china")}}

	orch := newOrchestrator(t, []providers.Provider{photoProv}, nil, fakeSynth{fail: true}, Options{AllowRawImage: true})
	job := NewJobContext()

	res := orch.Resolve(context.Background(), job, request(0, "great wall of china", t))
	if res.Locator == "" || res.IsVideo {
		t.Fatalf("resolution = %+v, want the raw image under the override", res)
	}
}

func TestExhaustionFallsBackToUnusedLibrary(t *testing.T) {
	empty := &fakeProvider{source: providers.SourcePexelsVideo, video: true}
	lib := seedLibrary(t, "spare_broll.mp4")

	orch := newOrchestrator(t, []providers.Provider{empty}, lib, nil, Options{})
	job := NewJobContext()

	res := orch.Resolve(context.Background(), job, request(0, "impossibly obscure subject", t))
	if res.Locator != "spare_broll.mp4" {
		t.Fatalf("Locator = %q, want the unused library asset", res.Locator)
	}
	if !job.IsUnmatchable(0, "impossibly obscure subject") {
		t.Error("negative-cache entry missing after exhaustion")
	}
}

func TestNegativeCachedSceneTakesExhaustPath(t *testing.T) {
	// A re-queried scene whose every working subject is already in the
	// negative cache is exhausted, not an intentional caption card.
	empty := &fakeProvider{source: providers.SourcePexelsVideo, video: true}
	lib := seedLibrary(t, "spare_broll.mp4")

	orch := newOrchestrator(t, []providers.Provider{empty}, lib, nil, Options{})
	job := NewJobContext()
	job.MarkUnmatchable(0, "impossibly obscure subject")

	res := orch.Resolve(context.Background(), job, request(0, "impossibly obscure subject", t))
	if res.CaptionCard {
		t.Fatal("negative-cached scene resolved as a caption card")
	}
	if res.Locator != "spare_broll.mp4" {
		t.Fatalf("Locator = %q, want the unused library asset", res.Locator)
	}
}

func TestForcedLocatorShortCircuits(t *testing.T) {
	prov := &fakeProvider{source: providers.SourcePexelsVideo, video: true}
	workDir := t.TempDir()
	forced := filepath.Join(workDir, "editor_choice.mp4")
	if err := os.WriteFile(forced, []byte("clip"), 0o644); err != nil {
		t.Fatalf("write forced clip: %v", err)
	}

	orch := newOrchestrator(t, []providers.Provider{prov}, nil, nil, Options{})
	job := NewJobContext()

	req := request(0, "anything at all", t)
	req.ForcedLocator = forced
	res := orch.Resolve(context.Background(), job, req)
	if res.Locator != forced {
		t.Fatalf("Locator = %q, want the forced locator", res.Locator)
	}
	if prov.searchCount() != 0 {
		t.Errorf("providers searched %d times despite forced locator", prov.searchCount())
	}
	if !res.IsVideo {
		t.Error("forced .mp4 locator not marked as video")
	}
}

func TestForcedImageLocatorIsNotVideo(t *testing.T) {
	prov := &fakeProvider{source: providers.SourcePexelsVideo, video: true}
	workDir := t.TempDir()
	forced := filepath.Join(workDir, "editor_choice.jpg")
	if err := os.WriteFile(forced, []byte("still"), 0o644); err != nil {
		t.Fatalf("write forced image: %v", err)
	}

	orch := newOrchestrator(t, []providers.Provider{prov}, nil, nil, Options{})
	job := NewJobContext()

	req := request(0, "anything at all", t)
	req.ForcedLocator = forced
	res := orch.Resolve(context.Background(), job, req)
	if res.Locator != forced {
		t.Fatalf("Locator = %q, want the forced locator", res.Locator)
	}
	if res.IsVideo {
		t.Error("forced .jpg locator marked as video")
	}
}

func TestDedupeByStem(t *testing.T) {
	candidates := []Candidate{
		{Hit: providers.Hit{URL: "https://a.example/clip_one.mp4"}},
		{Hit: providers.Hit{URL: "https://b.example/Clip_One.mp4?fmt=hd"}},
		{Hit: providers.Hit{URL: "https://a.example/clip_two.mp4"}},
	}
	deduped := dedupeByStem(candidates)
	if len(deduped) != 2 {
		t.Fatalf("dedupeByStem() kept %d candidates, want 2", len(deduped))
	}
}

func TestNaiveKeyword(t *testing.T) {
	cases := []struct{ in, want string }{
		{"the mighty gorilla", "mighty"},
		{"a big cat", "a"},
		{"waterfall", "waterfall"},
	}
	for _, tc := range cases {
		if got := naiveKeyword(tc.in); got != tc.want {
			t.Errorf("naiveKeyword(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveManyScenesTerminates(t *testing.T) {
	prov := &fakeProvider{source: providers.SourcePexelsVideo, video: true,
		hits: []providers.Hit{
			videoHit(providers.SourcePexelsVideo, "https://cdn.example/jungle_one.mp4", "jungle canopy"),
			videoHit(providers.SourcePexelsVideo, "https://cdn.example/jungle_two.mp4", "jungle river"),
			videoHit(providers.SourcePexelsVideo, "https://cdn.example/jungle_three.mp4", "jungle waterfall"),
		}}

	orch := newOrchestrator(t, []providers.Provider{prov}, nil, nil, Options{})
	job := NewJobContext()

	resolved := 0
	for scene := 0; scene < 5; scene++ {
		res := orch.Resolve(context.Background(), job, request(scene, fmt.Sprintf("jungle scene %d", scene), t))
		if res.Resolved() {
			resolved++
		}
	}
	if resolved < 3 {
		t.Fatalf("resolved %d scenes, want all three distinct clips consumed", resolved)
	}
	if job.UsedCount() < 3 {
		t.Errorf("UsedCount() = %d, want every selection registered", job.UsedCount())
	}
}
