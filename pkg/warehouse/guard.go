package warehouse

import "github.com/poutila/tokenwarehouse/pkg/token"

// check validates document-wide limits. It runs before any index is built
// so an adversarial document is rejected before expensive work starts.
func (l Limits) check(tokenCount, byteSize, maxDepth int) error {
	if tokenCount > l.MaxTokens {
		return &LimitExceededError{Limit: "tokens", Actual: tokenCount, Max: l.MaxTokens}
	}
	if byteSize > l.MaxBytes {
		return &LimitExceededError{Limit: "bytes", Actual: byteSize, Max: l.MaxBytes}
	}
	if maxDepth > l.MaxNesting {
		return &LimitExceededError{Limit: "nesting", Actual: maxDepth, Max: l.MaxNesting}
	}
	return nil
}

// measure computes the guard inputs in one pass: total payload bytes and
// the maximum nesting depth implied by the nesting markers. Depth tracking
// uses a plain counter, so a stream that never closes its opens is measured
// at its full (possibly hostile) depth.
func measure(views []token.View) (byteSize, maxDepth int) {
	depth := 0
	for _, v := range views {
		byteSize += v.ByteLen()
		switch v.Nesting {
		case 1:
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case -1:
			if depth > 0 {
				depth--
			}
		}
	}
	return byteSize, maxDepth
}
