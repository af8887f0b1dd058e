package functions

import (
	"context"
	"regexp"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// cachedRegexCompiler caches compiled I-Regexp patterns translated to
// RE2 syntax: the unanchored form keyed by the original pattern text,
// the anchored form by its ^(?:...)$-wrapped text. Each Registry owns
// its own cache.
type cachedRegexCompiler struct {
	mu       sync.RWMutex
	patterns map[string]*regexp.Regexp
}

func newCachedRegexCompiler() *cachedRegexCompiler {
	return &cachedRegexCompiler{patterns: make(map[string]*regexp.Regexp)}
}

func (c *cachedRegexCompiler) compile(pattern string) (*regexp.Regexp, error) {
	translated, err := translateIRegexp(pattern)
	if err != nil {
		return nil, evaluationErrorf("invalid regex %q: %v", pattern, err)
	}
	return c.compiled(pattern, translated)
}

// compileAnchored compiles pattern wrapped so a match only succeeds
// against the subject's entire span, cached separately from the
// unanchored form under its own key.
func (c *cachedRegexCompiler) compileAnchored(pattern string) (*regexp.Regexp, error) {
	translated, err := translateIRegexp(pattern)
	if err != nil {
		return nil, evaluationErrorf("invalid regex %q: %v", pattern, err)
	}
	anchored := "^(?:" + translated + ")$"
	return c.compiled(anchored, anchored)
}

func (c *cachedRegexCompiler) compiled(key, source string) (*regexp.Regexp, error) {
	c.mu.RLock()
	if compiled, ok := c.patterns[key]; ok {
		c.mu.RUnlock()
		return compiled, nil
	}
	c.mu.RUnlock()

	compiled, err := regexp.Compile(source)
	if err != nil {
		return nil, evaluationErrorf("invalid regex %q: %v", source, err)
	}

	c.mu.Lock()
	c.patterns[key] = compiled
	c.mu.Unlock()

	return compiled, nil
}

// translateIRegexp adapts an I-Regexp (RFC 9485) pattern to RE2
// syntax. I-Regexp has no anchoring semantics of its own (the RFC
// 9535 functions anchor or search explicitly at the call site) and,
// unlike some regex dialects, its '.' never matches line terminators
// -- RE2 already excludes '\n' from '.' by default, so no rewrite is
// needed there. This is the single seam where a future I-Regexp/RE2
// divergence (character-class width, \d\s\w Unicode semantics) would
// be reconciled.
func translateIRegexp(pattern string) (string, error) {
	return pattern, nil
}

// regexEngine applies bounded-time matching against cached, compiled
// patterns, optionally throttled by a token-bucket budget shared
// across every regex call a Registry makes.
type regexEngine struct {
	compiler *cachedRegexCompiler
	timeout  time.Duration
	budget   *rate.Limiter
}

func newRegexEngine(timeout time.Duration, requestsPerSecond float64) *regexEngine {
	var budget *rate.Limiter
	if requestsPerSecond > 0 {
		budget = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &regexEngine{
		compiler: newCachedRegexCompiler(),
		timeout:  timeout,
		budget:   budget,
	}
}

// fullMatch reports whether subject, in its entirety, matches pattern
// (the "match" function's anchored semantics). Go's regexp is
// leftmost-first rather than leftmost-longest, so span-checking an
// unanchored FindStringIndex against [0,len(subject)) is wrong
// whenever an earlier alternative is a proper prefix of a full-string
// match (pattern "a|ab" against "ab" finds "a" first and would report
// no full match). Anchoring the compiled pattern itself with
// ^(?:...)$ avoids that, since RE2 correctly resolves the alternation
// to find the overall match.
func (e *regexEngine) fullMatch(pattern, subject string) (bool, error) {
	re, err := e.prepareAnchored(pattern)
	if err != nil {
		return false, err
	}
	return e.runBounded(pattern, func() bool {
		return re.MatchString(subject)
	})
}

// containsMatch reports whether pattern matches anywhere within
// subject (the "search" function's substring semantics).
func (e *regexEngine) containsMatch(pattern, subject string) (bool, error) {
	re, err := e.prepare(pattern)
	if err != nil {
		return false, err
	}
	return e.runBounded(pattern, func() bool {
		return re.MatchString(subject)
	})
}

func (e *regexEngine) prepare(pattern string) (*regexp.Regexp, error) {
	if err := e.checkBudget(); err != nil {
		return nil, err
	}
	return e.compiler.compile(pattern)
}

func (e *regexEngine) prepareAnchored(pattern string) (*regexp.Regexp, error) {
	if err := e.checkBudget(); err != nil {
		return nil, err
	}
	return e.compiler.compileAnchored(pattern)
}

func (e *regexEngine) checkBudget() error {
	if e.budget != nil && !e.budget.Allow() {
		return evaluationErrorf("regex throughput budget exceeded")
	}
	return nil
}

// runBounded races fn, which performs the actual regexp match, against
// a wall-clock deadline. RE2 guarantees linear-time matching, but an
// adversarial pattern/subject combination can still run longer than a
// caller wants to wait, so every match is bounded (default 1s).
func (e *regexEngine) runBounded(pattern string, fn func() bool) (bool, error) {
	timeout := e.timeout
	if timeout <= 0 {
		timeout = time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resultCh := make(chan bool, 1)
	go func() {
		resultCh <- fn()
	}()

	select {
	case matched := <-resultCh:
		return matched, nil
	case <-ctx.Done():
		return false, evaluationErrorf("regex %q exceeded %s timeout", pattern, timeout)
	}
}
