package matcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"socialstorm/internal/logging"
	"socialstorm/internal/providers"
	"socialstorm/internal/providers/library"
	"socialstorm/internal/services/llm"
	"socialstorm/internal/subjects"
	"socialstorm/internal/textmatch"
	"socialstorm/internal/usagestore"
	"socialstorm/internal/variety"
)

const reformulateSystemPrompt = `You rewrite a stock-footage search phrase that found nothing.
Answer with ONE alternative phrase in plain stock-query style: short,
literal, concrete. No abstractions, no vague words. Return only the phrase.`

// Synthesizer renders a still image into a short video clip.
// Satisfied by the synth package's renderer.
type Synthesizer interface {
	Render(ctx context.Context, imagePath, destDir string) (string, error)
}

// Options tunes the orchestrator. Zero values take the documented
// defaults.
type Options struct {
	MaxSubjects        int
	MaxAttempts        int
	SceneBudget        time.Duration
	ProviderTimeout    time.Duration
	VideoScoreFloor    float64
	ImageScoreFloor    float64
	AllowRawImage      bool
	RelaxLandmarkFinal bool
}

func (o Options) withDefaults() Options {
	if o.MaxSubjects <= 0 {
		o.MaxSubjects = 5
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 2
	}
	if o.SceneBudget <= 0 {
		o.SceneBudget = 16 * time.Second
	}
	if o.ProviderTimeout <= 0 {
		o.ProviderTimeout = 10 * time.Second
	}
	if o.VideoScoreFloor == 0 {
		o.VideoScoreFloor = 10
	}
	if o.ImageScoreFloor == 0 {
		o.ImageScoreFloor = 25
	}
	return o
}

// Orchestrator resolves scenes to clips. Construct once per process and
// share across jobs; all per-job state lives in the JobContext.
type Orchestrator struct {
	providers []providers.Provider
	library   *library.Provider
	registry  *subjects.Registry
	blocker   *variety.Blocker
	renderer  Synthesizer
	llmClient *llm.Client
	store     *usagestore.Store
	opts      Options
	logger    *slog.Logger

	now func() time.Time
}

// New builds an Orchestrator. The library provider, LLM client, store,
// and renderer are each optional; the matching chain degrades
// gracefully without them.
func New(
	providerList []providers.Provider,
	lib *library.Provider,
	registry *subjects.Registry,
	blocker *variety.Blocker,
	renderer Synthesizer,
	llmClient *llm.Client,
	store *usagestore.Store,
	opts Options,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		providers: providerList,
		library:   lib,
		registry:  registry,
		blocker:   blocker,
		renderer:  renderer,
		llmClient: llmClient,
		store:     store,
		opts:      opts.withDefaults(),
		logger:    logging.NewComponentLogger(logger, "matcher"),
		now:       time.Now,
	}
}

// Resolve matches one scene to one clip. It never fails hard: the
// zero-locator Resolution is the only signal the caller must treat as a
// scene failure, and even internal provider errors surface only in
// logs.
func (o *Orchestrator) Resolve(ctx context.Context, job *JobContext, req SceneRequest) Resolution {
	started := o.now()
	logger := o.logger.With(
		logging.String(logging.FieldJobID, job.ID),
		logging.Int(logging.FieldScene, req.SceneIndex),
	)

	subject := o.effectiveSubject(req)
	logger.Debug("resolving scene", logging.String(logging.FieldSubject, subject))

	if res, ok := o.fastPath(ctx, job, req, subject, logger); ok {
		return res
	}

	workingSubjects, allNegative := o.fanOut(ctx, job, req, subject)
	if len(workingSubjects) == 0 {
		if allNegative {
			logger.Info("all working subjects already marked unmatchable")
			return o.exhaust(ctx, job, req, subject, logger)
		}
		logger.Info("all working subjects substituted to caption card")
		return Resolution{CaptionCard: true, Subject: variety.CaptionCard}
	}

	deadline := started.Add(o.opts.SceneBudget)
	for attempt := 1; attempt <= o.opts.MaxAttempts; attempt++ {
		finalAttempt := attempt == o.opts.MaxAttempts
		attemptLogger := logger.With(logging.Int(logging.FieldAttempt, attempt))

		candidates := o.collectCandidates(ctx, job, subject, workingSubjects, deadline, finalAttempt, attemptLogger)

		if res, ok := o.selectVideo(ctx, job, req, subject, workingSubjects, candidates, attemptLogger); ok {
			return res
		}
		if res, ok := o.selectImage(ctx, job, req, subject, workingSubjects, candidates, attemptLogger); ok {
			return res
		}

		if finalAttempt || o.now().After(deadline) {
			break
		}
		reformulated := o.reformulate(ctx, subject, attemptLogger)
		workingSubjects = []string{o.checkVariety(ctx, job, reformulated)}
		if workingSubjects[0] == variety.CaptionCard {
			break
		}
	}

	return o.exhaust(ctx, job, req, subject, logger)
}

// effectiveSubject resolves what the scene is actually about, walking
// the generic fallback chain: own subject, then main topic, then the
// first scene's text.
func (o *Orchestrator) effectiveSubject(req SceneRequest) string {
	subject := req.Subject.Canonical()
	if req.IsAnchorScene {
		subject = strings.TrimSpace(req.MainTopic)
		if subject == "" {
			subject = strings.TrimSpace(req.FirstSceneText)
		}
	}
	if subjects.IsGeneric(subject) {
		if topic := strings.TrimSpace(req.MainTopic); !subjects.IsGeneric(topic) {
			return topic
		}
		if first := strings.TrimSpace(req.FirstSceneText); !subjects.IsGeneric(first) {
			return first
		}
	}
	return subject
}

func (o *Orchestrator) fastPath(ctx context.Context, job *JobContext, req SceneRequest, subject string, logger *slog.Logger) (Resolution, bool) {
	if forced := strings.TrimSpace(req.ForcedLocator); forced != "" {
		if o.locatorExists(ctx, forced) {
			res := Resolution{Locator: forced, Subject: subject, IsVideo: library.IsVideoKey(forced)}
			o.commit(ctx, job, req, res, forced)
			logger.Info("forced locator accepted", logging.String(logging.FieldLocator, forced))
			return res, true
		}
		logger.Warn("forced locator missing, falling through to search",
			logging.String(logging.FieldLocator, forced))
	}

	if cached, ok := job.CachedResult(req.SceneIndex, []string{subject}); ok {
		logger.Debug("cache hit", logging.String(logging.FieldLocator, cached.Locator))
		return cached, true
	}

	if o.library != nil {
		if landmark, ok := LandmarkName(subject); ok {
			if hit, found := o.library.StrictMatch(ctx, landmark, job); found {
				res := Resolution{
					Locator:  hit.URL,
					Provider: providers.SourceLibrary,
					Subject:  subject,
					Score:    hit.Rank,
					IsVideo:  true,
				}
				o.commit(ctx, job, req, res, hit.URL)
				job.CacheResult(req.SceneIndex, []string{subject}, res)
				logger.Info("landmark fast path",
					logging.String(logging.FieldSubject, landmark),
					logging.String(logging.FieldLocator, hit.URL))
				return res, true
			}
		}
	}
	return Resolution{}, false
}

func (o *Orchestrator) locatorExists(ctx context.Context, locator string) bool {
	if strings.Contains(locator, "://") {
		return true
	}
	if _, err := os.Stat(locator); err == nil {
		return true
	}
	return o.library != nil && o.library.Has(ctx, locator)
}

// fanOut builds the working subject list: extractor output merged with
// the resolved subject, negative-cache filtered, capped, and passed
// through the repetition blocker. allNegative reports that every
// candidate was dropped by the negative cache before reaching the
// blocker, which means the scene is already known to be exhausted.
func (o *Orchestrator) fanOut(ctx context.Context, job *JobContext, req SceneRequest, subject string) (working []string, allNegative bool) {
	line := subjects.Line{Text: req.SceneText, MainTopic: req.MainTopic}
	if strings.TrimSpace(line.Text) == "" {
		line.Text = subject
	}

	var merged []string
	if o.registry != nil {
		merged = o.registry.Extract(ctx, line, o.opts.MaxSubjects)
	}
	if len(merged) == 0 {
		merged = []string{subject}
	} else if !containsFold(merged, subject) && len(merged) < o.opts.MaxSubjects {
		merged = append(merged, subject)
	}
	if len(merged) > o.opts.MaxSubjects {
		merged = merged[:o.opts.MaxSubjects]
	}

	working = make([]string, 0, len(merged))
	negativeHits := 0
	for _, candidate := range merged {
		if job.IsUnmatchable(req.SceneIndex, candidate) {
			negativeHits++
			continue
		}
		checked := o.checkVariety(ctx, job, candidate)
		if checked == variety.CaptionCard {
			continue
		}
		if !containsFold(working, checked) {
			working = append(working, checked)
		}
	}
	return working, len(working) == 0 && negativeHits == len(merged)
}

func (o *Orchestrator) checkVariety(ctx context.Context, job *JobContext, subject string) string {
	if o.blocker == nil {
		return subject
	}
	return o.blocker.Check(ctx, subject, job.RecentSubjects())
}

func containsFold(list []string, value string) bool {
	folded := textmatch.Fold(value)
	for _, entry := range list {
		if textmatch.Fold(entry) == folded {
			return true
		}
	}
	return false
}

type searchResult struct {
	provider providers.Provider
	subject  string
	hits     []providers.Hit
}

// collectCandidates runs the video tier and, when it comes up empty,
// the photo tier. Provider failures and timeouts contribute nothing.
func (o *Orchestrator) collectCandidates(ctx context.Context, job *JobContext, subject string, workingSubjects []string, deadline time.Time, finalAttempt bool, logger *slog.Logger) []Candidate {
	videoProviders := make([]providers.Provider, 0, len(o.providers))
	photoProviders := make([]providers.Provider, 0, len(o.providers))
	for _, provider := range o.providers {
		if provider.ServesVideo() {
			videoProviders = append(videoProviders, provider)
		} else {
			photoProviders = append(photoProviders, provider)
		}
	}

	candidates := o.searchTier(ctx, job, videoProviders, workingSubjects, deadline, logger)
	if len(candidates) == 0 {
		candidates = o.searchTier(ctx, job, photoProviders, workingSubjects, deadline, logger)
	}

	_, landmarkMode := LandmarkName(subject)
	if landmarkMode && !(finalAttempt && o.opts.RelaxLandmarkFinal) {
		kept := candidates[:0]
		for _, candidate := range candidates {
			if landmarkCulled(candidate.Hit.Metadata()) {
				continue
			}
			kept = append(kept, candidate)
		}
		candidates = kept
	}

	return dedupeByStem(candidates)
}

// searchTier fans one provider tier out across all working subjects.
// Every (subject, provider) pair gets its own goroutine and timeout;
// the tier waits for all of them, so one slow provider cannot starve
// the rest beyond its own timeout.
func (o *Orchestrator) searchTier(ctx context.Context, job *JobContext, tier []providers.Provider, workingSubjects []string, deadline time.Time, logger *slog.Logger) []Candidate {
	if len(tier) == 0 || len(workingSubjects) == 0 {
		return nil
	}

	results := make(chan searchResult)
	var wg sync.WaitGroup
	launched := 0
	for _, subject := range workingSubjects {
		if o.now().After(deadline) {
			logger.Warn("scene budget exhausted before subject search",
				logging.String(logging.FieldSubject, subject),
				logging.Duration(logging.FieldElapsed, o.opts.SceneBudget))
			break
		}
		for _, provider := range tier {
			wg.Add(1)
			launched++
			go func(provider providers.Provider, subject string) {
				defer wg.Done()
				searchCtx, cancel := context.WithTimeout(ctx, o.opts.ProviderTimeout)
				defer cancel()
				hits, err := provider.Search(searchCtx, subject, job)
				if err != nil {
					logger.Debug("provider search failed",
						logging.String(logging.FieldProvider, string(provider.Name())),
						logging.String(logging.FieldSubject, subject),
						logging.Error(err))
					return
				}
				results <- searchResult{provider: provider, subject: subject, hits: hits}
			}(provider, subject)
		}
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var collected []Candidate
	for result := range results {
		for _, hit := range result.hits {
			collected = append(collected, Candidate{
				Hit:     hit,
				Source:  result.provider,
				Subject: result.subject,
			})
		}
	}
	logger.Debug("tier search complete",
		logging.Int("searches", launched),
		logging.Int("hits", len(collected)))
	return collected
}

// dedupeByStem keeps the first candidate per normalized locator.
func dedupeByStem(candidates []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(candidates))
	deduped := candidates[:0]
	for _, candidate := range candidates {
		stem := textmatch.Stem(candidate.Hit.URL)
		if _, dup := seen[stem]; dup {
			continue
		}
		seen[stem] = struct{}{}
		deduped = append(deduped, candidate)
	}
	return deduped
}

// selectVideo downloads the best surviving video candidate, walking
// down the ranking when a download fails validation.
func (o *Orchestrator) selectVideo(ctx context.Context, job *JobContext, req SceneRequest, subject string, workingSubjects []string, candidates []Candidate, logger *slog.Logger) (Resolution, bool) {
	var videos []Candidate
	for _, candidate := range candidates {
		if candidate.Hit.IsVideo {
			videos = append(videos, candidate)
		}
	}
	survivors := ScoreAll(videos, job.UsedStems(), o.opts.VideoScoreFloor)
	for _, candidate := range survivors {
		locator, err := candidate.Source.Download(ctx, candidate.Hit, o.sceneDir(req))
		if err != nil {
			logger.Warn("video candidate failed validation, trying next",
				logging.String(logging.FieldProvider, string(candidate.Hit.Provider)),
				logging.String(logging.FieldLocator, candidate.Hit.URL),
				logging.Error(err))
			continue
		}
		res := Resolution{
			Locator:  locator,
			Provider: candidate.Hit.Provider,
			Subject:  candidate.Subject,
			Score:    candidate.Score,
			IsVideo:  true,
		}
		o.commit(ctx, job, req, res, candidate.Hit.URL)
		job.CacheResult(req.SceneIndex, []string{subject}, res)
		job.CacheResult(req.SceneIndex, workingSubjects, res)
		logger.Info("video candidate selected",
			logging.String(logging.FieldProvider, string(res.Provider)),
			logging.String(logging.FieldLocator, locator),
			logging.Float64(logging.FieldScore, res.Score))
		return res, true
	}
	return Resolution{}, false
}

// selectImage synthesizes a clip from the best surviving image. The
// bare image is only ever returned under the explicit raw-image
// override.
func (o *Orchestrator) selectImage(ctx context.Context, job *JobContext, req SceneRequest, subject string, workingSubjects []string, candidates []Candidate, logger *slog.Logger) (Resolution, bool) {
	var images []Candidate
	for _, candidate := range candidates {
		if !candidate.Hit.IsVideo {
			images = append(images, candidate)
		}
	}
	survivors := ScoreAll(images, job.UsedStems(), o.opts.ImageScoreFloor)
	for _, candidate := range survivors {
		imagePath, err := candidate.Source.Download(ctx, candidate.Hit, o.sceneDir(req))
		if err != nil {
			logger.Warn("image candidate failed validation, trying next",
				logging.String(logging.FieldLocator, candidate.Hit.URL),
				logging.Error(err))
			continue
		}

		if o.renderer != nil {
			synthesized, renderErr := o.renderer.Render(ctx, imagePath, o.sceneDir(req))
			if renderErr == nil {
				res := Resolution{
					Locator:     synthesized,
					Provider:    candidate.Hit.Provider,
					Subject:     candidate.Subject,
					Score:       candidate.Score,
					IsVideo:     true,
					Synthesized: true,
				}
				// The source image is consumed too, so it is never re-offered.
				job.MarkUsed(imagePath)
				job.MarkUsed(candidate.Hit.URL)
				o.commit(ctx, job, req, res, synthesized)
				job.CacheResult(req.SceneIndex, []string{subject}, res)
				job.CacheResult(req.SceneIndex, workingSubjects, res)
				logger.Info("image synthesized to video",
					logging.String(logging.FieldLocator, synthesized),
					logging.Float64(logging.FieldScore, res.Score))
				return res, true
			}
			logger.Warn("synthesis failed", logging.Error(renderErr))
		}

		if o.opts.AllowRawImage {
			res := Resolution{
				Locator:  imagePath,
				Provider: candidate.Hit.Provider,
				Subject:  candidate.Subject,
				Score:    candidate.Score,
			}
			o.commit(ctx, job, req, res, candidate.Hit.URL)
			logger.Info("raw image returned under override",
				logging.String(logging.FieldLocator, imagePath))
			return res, true
		}
	}
	return Resolution{}, false
}

// reformulate asks the model for one alternative query, falling back to
// the subject's first long word.
func (o *Orchestrator) reformulate(ctx context.Context, subject string, logger *slog.Logger) string {
	if o.llmClient != nil {
		raw, err := o.llmClient.Complete(ctx, reformulateSystemPrompt, "Failed phrase: "+subject, 40, 0.6)
		if err == nil {
			if phrase, ok := subjects.EnforcePhrase(raw); ok {
				logger.Debug("subject reformulated",
					logging.String(logging.FieldSubject, subject),
					logging.String("reformulated", phrase))
				return phrase
			}
		} else {
			logger.Warn("reformulation failed", logging.Error(err))
		}
	}
	return naiveKeyword(subject)
}

// naiveKeyword picks the first word long enough to carry meaning.
func naiveKeyword(subject string) string {
	fields := strings.Fields(subject)
	for _, field := range fields {
		if len(field) >= 5 {
			return field
		}
	}
	if len(fields) > 0 {
		return fields[0]
	}
	return subject
}

// exhaust handles total failure: negative-cache the subject, then grab
// any unused library asset, then give up with the null resolution.
func (o *Orchestrator) exhaust(ctx context.Context, job *JobContext, req SceneRequest, subject string, logger *slog.Logger) Resolution {
	job.MarkUnmatchable(req.SceneIndex, subject)

	if o.library != nil {
		if key, ok := o.library.Unused(ctx, job); ok {
			res := Resolution{
				Locator:  key,
				Provider: providers.SourceLibrary,
				Subject:  subject,
				IsVideo:  library.IsVideoKey(key),
			}
			o.commit(ctx, job, req, res, key)
			logger.Warn("scene exhausted, using unused library asset",
				logging.String(logging.FieldLocator, key))
			return res
		}
	}

	logger.Error("scene could not be matched",
		logging.String(logging.FieldSubject, subject))
	return Resolution{}
}

func (o *Orchestrator) sceneDir(req SceneRequest) string {
	return filepath.Join(req.WorkDir, fmt.Sprintf("scene_%03d", req.SceneIndex))
}

// commit registers a selection in the job state and the persistent
// ledger. Ledger failures are logged, never propagated.
func (o *Orchestrator) commit(ctx context.Context, job *JobContext, req SceneRequest, res Resolution, sourceLocator string) {
	job.MarkUsed(res.Locator)
	if sourceLocator != "" && sourceLocator != res.Locator {
		job.MarkUsed(sourceLocator)
	}
	job.NoteSubject(res.Subject)
	if res.Locator != "" {
		job.MarkSceneSelection(req.SceneIndex, res.Locator)
	}
	if o.store == nil || res.Locator == "" {
		return
	}
	_, err := o.store.Record(ctx, usagestore.Selection{
		JobID:      job.ID,
		SceneIndex: req.SceneIndex,
		Subject:    res.Subject,
		Locator:    res.Locator,
		Provider:   string(res.Provider),
		IsVideo:    res.IsVideo,
		Score:      res.Score,
	})
	if err != nil {
		o.logger.Warn("selection ledger write failed", logging.Error(err))
	}
}
