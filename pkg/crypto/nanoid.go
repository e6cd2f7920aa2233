package crypto

import (
	"crypto/rand"
	"errors"
	"math"
)

const (
	defaultAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	defaultSize     = 22 // 22 * 6 = 132 bits of entropy
	minAlphabetSize = 8
	maxAlphabetSize = 255
)

var (
	ErrAlphabetTooShort = errors.New("alphabet must contain at least 8 characters")
	ErrAlphabetTooLong  = errors.New("alphabet must contain no more than 255 characters")
	ErrAlphabetNotASCII = errors.New("alphabet must contain only ASCII characters")
)

// NanoIDGenerator produces short random ids, used for client ids
type NanoIDGenerator struct {
	alphabet string
	mask     byte
	size     int
}

// NewNanoID builds a generator. An empty alphabet selects the URL-safe default.
func NewNanoID(alphabet string, size int) (*NanoIDGenerator, error) {
	if alphabet == "" {
		alphabet = defaultAlphabet
	}
	if size <= 0 {
		size = defaultSize
	}

	// Generate indexes by byte position
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] > 127 {
			return nil, ErrAlphabetNotASCII
		}
	}
	if len(alphabet) < minAlphabetSize {
		return nil, ErrAlphabetTooShort
	}
	if len(alphabet) > maxAlphabetSize {
		return nil, ErrAlphabetTooLong
	}

	return &NanoIDGenerator{
		alphabet: alphabet,
		mask:     maskFor(len(alphabet)),
		size:     size,
	}, nil
}

// maskFor is the smallest all-ones byte covering every alphabet index.
func maskFor(alphabetLen int) byte {
	mask := 1
	for mask < alphabetLen-1 {
		mask = mask<<1 | 1
	}
	return byte(mask)
}

func (n *NanoIDGenerator) Generate() (string, error) {
	alphabetLen := len(n.alphabet)
	step := int(math.Ceil(1.6 * float64(int(n.mask)*n.size) / float64(alphabetLen)))

	id := make([]byte, 0, n.size)
	buf := make([]byte, step)

	for len(id) < n.size {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			// Rejection sampling keeps the distribution uniform
			if idx := int(b & n.mask); idx < alphabetLen {
				id = append(id, n.alphabet[idx])
				if len(id) == n.size {
					break
				}
			}
		}
	}

	return string(id), nil
}
