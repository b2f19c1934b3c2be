package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Fingerprint identifies a projection by its assumptions and options. Two
// calls with equal arguments always return the same digest, and policy
// spellings that mean the same thing hash alike.
func Fingerprint(a Assumptions, opts Options) string {
	if policy, err := ParseFundingPolicy(string(opts.Funding)); err == nil {
		opts.Funding = policy
	}
	payload := struct {
		A Assumptions
		O Options
	}{a, opts}
	// Struct fields marshal in declaration order, so the encoding is stable.
	data, err := json.Marshal(payload)
	if err != nil {
		// NaN and Inf have no JSON form.
		data = fmt.Appendf(nil, "%#v", payload)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
