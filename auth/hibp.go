package auth

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	hibpUserAgent   = "passvault/0.2"
	hibpPrefixLen   = 5
	hibpMaxLineSize = 256
)

var (
	// hibpRangeURL is overridden in tests.
	hibpRangeURL   = "https://api.pwnedpasswords.com/range/"
	hibpHTTPClient = &http.Client{Timeout: 4 * time.Second}
)

// Breach lookup failures. Callers decide whether to fail open or closed.
var (
	// ErrHIBPUnavailable indicates the range API could not be reached or refused the query.
	ErrHIBPUnavailable = errors.New("breach lookup unavailable")

	// ErrHIBPMalformed indicates the range API answered with an unparsable body.
	ErrHIBPMalformed = errors.New("breach lookup returned a malformed response")
)

// HIBPResult reports whether a password was found in the breach corpus and how often.
type HIBPResult struct {
	Found bool
	Count int
}

// CheckHIBP looks pw up in the Have I Been Pwned range API. Only the first five
// hex characters of SHA-1(pw) leave the process.
func CheckHIBP(ctx context.Context, pw string) (HIBPResult, error) {
	prefix, suffix := hibpHashParts(pw)

	body, err := fetchHIBPRange(ctx, prefix)
	if err != nil {
		return HIBPResult{}, err
	}
	defer body.Close()

	return matchHIBPSuffix(body, suffix)
}

// hibpHashParts splits the upper-case hex SHA-1 of pw into the queried prefix
// and the locally matched suffix.
func hibpHashParts(pw string) (prefix, suffix string) {
	sum := sha1.Sum([]byte(pw))
	h := strings.ToUpper(hex.EncodeToString(sum[:]))
	return h[:hibpPrefixLen], h[hibpPrefixLen:]
}

func fetchHIBPRange(ctx context.Context, prefix string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hibpRangeURL+prefix, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrHIBPUnavailable, err)
	}
	req.Header.Set("User-Agent", hibpUserAgent)

	resp, err := hibpHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHIBPUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %s", ErrHIBPUnavailable, resp.Status)
	}
	return resp.Body, nil
}

// matchHIBPSuffix scans "SUFFIX:COUNT" lines for suffix. Lines without a
// separator are skipped.
func matchHIBPSuffix(r io.Reader, suffix string) (HIBPResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, hibpMaxLineSize), hibpMaxLineSize)
	for scanner.Scan() {
		candidate, count, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok || !strings.EqualFold(candidate, suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil || n < 0 {
			return HIBPResult{}, fmt.Errorf("%w: bad count %q", ErrHIBPMalformed, count)
		}
		return HIBPResult{Found: true, Count: n}, nil
	}
	if err := scanner.Err(); err != nil {
		return HIBPResult{}, fmt.Errorf("%w: %w", ErrHIBPMalformed, err)
	}
	return HIBPResult{}, nil
}
