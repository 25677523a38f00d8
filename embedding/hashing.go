package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

const defaultHashingDims = 4096

// stopWords carry no topic and are dropped before hashing.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "is": true, "are": true, "was": true,
	"what": true, "which": true, "who": true, "how": true, "does": true, "do": true, "did": true,
	"to": true, "in": true, "on": true, "at": true, "for": true, "from": true, "and": true,
	"or": true, "by": true, "with": true, "it": true, "its": true, "this": true, "that": true,
	"be": true, "as": true, "than": true, "then": true, "me": true, "my": true, "your": true,
	"there": true, "their": true,
}

// HashingEncoder is a deterministic, offline encoder: word unigrams, word
// bigrams and character trigrams are hashed into a fixed number of buckets
// and the result is L2-normalized. The sign of each contribution comes from
// the top hash bit so bucket collisions cancel out on average instead of
// piling up as false similarity.
type HashingEncoder struct {
	dims int
}

func NewHashing(dims int) *HashingEncoder {
	if dims <= 0 {
		dims = defaultHashingDims
	}
	return &HashingEncoder{dims: dims}
}

func (h *HashingEncoder) Dimensions() int { return h.dims }
func (h *HashingEncoder) Name() string    { return "hashing" }

func (h *HashingEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	words := contentWords(Words(text))
	if len(words) == 0 {
		return nil, ErrEmptyInput
	}
	v := make([]float32, h.dims)
	for i, w := range words {
		h.add(v, "w:"+w, 1)
		if i > 0 {
			h.add(v, "b:"+words[i-1]+" "+w, 0.5)
		}
		padded := []rune("^" + w + "$")
		for j := 0; j+3 <= len(padded); j++ {
			h.add(v, "c:"+string(padded[j:j+3]), 0.25)
		}
	}
	return Normalize(v), nil
}

func (h *HashingEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return encodeEach(ctx, h, texts)
}

func (h *HashingEncoder) add(v []float32, feature string, weight float32) {
	f := fnv.New32a()
	_, _ = f.Write([]byte(feature))
	sum := f.Sum32()
	if sum>>31 == 1 {
		weight = -weight
	}
	v[sum%uint32(h.dims)] += weight
}

// contentWords drops stop words, keeping the input when nothing else is left.
func contentWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !stopWords[w] {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return words
	}
	return out
}

// Words lower-cases text and splits it into letter/digit runs. Symbols the
// tutor cares about (θ, π, ², °) are kept as their own words.
func Words(text string) []string {
	text = strings.ToLower(text)
	var out []string
	var cur strings.Builder
	flush := func() {
		if w := strings.Trim(cur.String(), "."); w != "" {
			out = append(out, w)
		}
		cur.Reset()
	}
	for _, r := range text {
		switch {
		case r == 'θ' || r == 'π' || r == '²' || r == '°' || r == '√':
			flush()
			out = append(out, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.':
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return out
}
