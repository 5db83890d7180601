package matcher

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"socialstorm/internal/textmatch"
)

// cacheLimit bounds the positive cache so a pathological job cannot
// grow it without bound.
const cacheLimit = 128

type cacheKey struct {
	sceneIndex  int
	subjectHash string
}

type negativeKey struct {
	sceneIndex int
	subject    string
}

// JobContext carries all per-job mutable state: the consumed-clip set,
// the positive and negative caches, and the job identifier. Scenes are
// resolved sequentially at the pipeline level, but providers inside one
// scene fan out concurrently, so mutation goes through a mutex.
type JobContext struct {
	ID string

	mu             sync.Mutex
	usedLocators   map[string]struct{}
	usedStems      map[string]struct{}
	sceneLocators  map[int]string
	recentSubjects []string
	cache          map[cacheKey]Resolution
	cacheOrder     []cacheKey
	negative       map[negativeKey]struct{}
}

// NewJobContext creates the state for one job.
func NewJobContext() *JobContext {
	return &JobContext{
		ID:            uuid.NewString(),
		usedLocators:  make(map[string]struct{}),
		usedStems:     make(map[string]struct{}),
		sceneLocators: make(map[int]string),
		cache:         make(map[cacheKey]Resolution),
		negative:      make(map[negativeKey]struct{}),
	}
}

// MarkSceneSelection records which locator a scene committed, so a
// retried scene can reclaim its own cached result even though the
// locator is now in the consumed set.
func (j *JobContext) MarkSceneSelection(sceneIndex int, locator string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.sceneLocators[sceneIndex] = locator
}

// NoteSubject appends a committed subject to the job's repetition
// history. The variety blocker reads only the trailing window.
func (j *JobContext) NoteSubject(subject string) {
	folded := textmatch.Fold(subject)
	if folded == "" {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.recentSubjects = append(j.recentSubjects, folded)
}

// RecentSubjects returns the job's committed subject folds, oldest
// first.
func (j *JobContext) RecentSubjects() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.recentSubjects...)
}

// MarkUsed registers a locator (and its stem) as consumed.
func (j *JobContext) MarkUsed(locator string) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.usedLocators[textmatch.Fold(locator)] = struct{}{}
	if stem := textmatch.Stem(locator); stem != "" {
		j.usedStems[stem] = struct{}{}
	}
}

// Excluded reports whether the locator, in full or by stem, has been
// consumed. Satisfies the provider exclusion contract.
func (j *JobContext) Excluded(locator string) bool {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.usedLocators[textmatch.Fold(locator)]; ok {
		return true
	}
	_, ok := j.usedStems[textmatch.Stem(locator)]
	return ok
}

// UsedCount returns how many locators the job has consumed.
func (j *JobContext) UsedCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.usedLocators)
}

// subjectSetHash produces a stable key for a set of working subjects,
// insensitive to order and case.
func subjectSetHash(workingSubjects []string) string {
	folded := make([]string, 0, len(workingSubjects))
	for _, subject := range workingSubjects {
		if f := textmatch.Fold(subject); f != "" {
			folded = append(folded, f)
		}
	}
	sort.Strings(folded)
	return strings.Join(folded, "\x1f")
}

// CacheResult stores a resolution for a scene's subject set, evicting
// the oldest entry past the cache limit.
func (j *JobContext) CacheResult(sceneIndex int, workingSubjects []string, res Resolution) {
	key := cacheKey{sceneIndex: sceneIndex, subjectHash: subjectSetHash(workingSubjects)}
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, exists := j.cache[key]; !exists {
		j.cacheOrder = append(j.cacheOrder, key)
		if len(j.cacheOrder) > cacheLimit {
			oldest := j.cacheOrder[0]
			j.cacheOrder = j.cacheOrder[1:]
			delete(j.cache, oldest)
		}
	}
	j.cache[key] = res
}

// CachedResult returns a prior resolution for the scene's subject set,
// provided its locator has not been consumed since it was cached.
func (j *JobContext) CachedResult(sceneIndex int, workingSubjects []string) (Resolution, bool) {
	key := cacheKey{sceneIndex: sceneIndex, subjectHash: subjectSetHash(workingSubjects)}
	j.mu.Lock()
	res, ok := j.cache[key]
	own := ok && j.sceneLocators[sceneIndex] == res.Locator
	j.mu.Unlock()
	if !ok {
		return Resolution{}, false
	}
	// A scene may reclaim the locator it committed itself; any other
	// consumed locator invalidates the entry.
	if res.Locator != "" && !own && j.Excluded(res.Locator) {
		return Resolution{}, false
	}
	res.FromCache = true
	return res, true
}

// MarkUnmatchable records that a (scene, subject) pair found nothing.
func (j *JobContext) MarkUnmatchable(sceneIndex int, subject string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.negative[negativeKey{sceneIndex: sceneIndex, subject: textmatch.Fold(subject)}] = struct{}{}
}

// IsUnmatchable reports whether the pair is known to find nothing.
func (j *JobContext) IsUnmatchable(sceneIndex int, subject string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, ok := j.negative[negativeKey{sceneIndex: sceneIndex, subject: textmatch.Fold(subject)}]
	return ok
}

// UsedStems returns a snapshot of consumed stems, for scoring.
func (j *JobContext) UsedStems() map[string]struct{} {
	j.mu.Lock()
	defer j.mu.Unlock()
	snapshot := make(map[string]struct{}, len(j.usedStems))
	for stem := range j.usedStems {
		snapshot[stem] = struct{}{}
	}
	return snapshot
}

// SeedUsed pre-populates the exclusion set, typically from the
// persistent selection ledger, so recent cross-job clips are avoided.
func (j *JobContext) SeedUsed(stems []string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, stem := range stems {
		if stem = textmatch.Fold(stem); stem != "" {
			j.usedStems[stem] = struct{}{}
		}
	}
}
