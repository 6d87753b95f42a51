package grading

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Alphabet maps alternative index to letter: index 0 is "A", 1 is "B", and so
// on. The mapping depends only on left-to-right position within a question.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// unknownLetter is reported for an index the alphabet cannot name.
const unknownLetter = "?"

// LetterFor returns the letter for alternative index i, or "?" when i is out
// of range.
func LetterFor(i int) string {
	if i < 0 || i >= len(Alphabet) {
		return unknownLetter
	}
	return Alphabet[i : i+1]
}

// AnswerKey maps question numbers (1-based) to the correct letter.
//
// The key is supplied by the caller and only read by the pipeline. Letters are
// compared case-sensitively.
type AnswerKey map[int]string

// Numbers returns the keyed question numbers in ascending order.
func (k AnswerKey) Numbers() []int {
	nums := make([]int, 0, len(k))
	for n := range k {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Validate checks that every question number is positive and every letter is
// one of the first alternatives letters of Alphabet.
func (k AnswerKey) Validate(alternatives int) error {
	if alternatives < 1 || alternatives > len(Alphabet) {
		return fmt.Errorf("%w: alternative count %d outside 1-%d", ErrInvalidAnswerKey, alternatives, len(Alphabet))
	}
	allowed := Alphabet[:alternatives]
	for _, n := range k.Numbers() {
		if n < 1 {
			return fmt.Errorf("%w: question number %d must be positive", ErrInvalidAnswerKey, n)
		}
		letter := k[n]
		if len(letter) != 1 || !strings.Contains(allowed, letter) {
			return fmt.Errorf("%w: question %d has letter %q, want one of %s", ErrInvalidAnswerKey, n, letter, allowed)
		}
	}
	return nil
}

// ParseAnswerString builds a key from consecutive letters, one per question
// starting at 1. Whitespace and commas are ignored; '-', '.' or '_' leave that
// question unkeyed. "CD-E" keys 1:C, 2:D and 4:E.
func ParseAnswerString(s string) (AnswerKey, error) {
	key := make(AnswerKey)
	n := 0
	for _, r := range s {
		switch {
		case unicode.IsSpace(r) || r == ',':
			continue
		case r == '-' || r == '.' || r == '_':
			n++
		case unicode.IsLetter(r):
			n++
			key[n] = string(r)
		default:
			return nil, fmt.Errorf("%w: unexpected character %q at question %d", ErrInvalidAnswerKey, r, n+1)
		}
	}
	return key, nil
}

// answerKeyFile is the on-disk layout. Answers may be a mapping of question
// number to letter, a sequence of letters, or a compact letter string.
//
//	answers:
//	  1: C
//	  2: D
type answerKeyFile struct {
	Answers yaml.Node `yaml:"answers"`
}

// ParseAnswerKey decodes a YAML (or JSON) answer key document.
func ParseAnswerKey(data []byte) (AnswerKey, error) {
	var doc answerKeyFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnswerKey, err)
	}

	node := doc.Answers
	switch node.Kind {
	case 0:
		return nil, fmt.Errorf("%w: missing answers", ErrInvalidAnswerKey)
	case yaml.ScalarNode:
		return ParseAnswerString(node.Value)
	case yaml.SequenceNode:
		key := make(AnswerKey, len(node.Content))
		for i, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: answer %d is not a letter", ErrInvalidAnswerKey, i+1)
			}
			if item.Value == "" || item.Value == "-" {
				continue
			}
			key[i+1] = item.Value
		}
		return key, nil
	case yaml.MappingNode:
		key := make(AnswerKey, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			k, v := node.Content[i], node.Content[i+1]
			n, err := strconv.Atoi(strings.TrimSpace(k.Value))
			if err != nil {
				return nil, fmt.Errorf("%w: question %q is not a number", ErrInvalidAnswerKey, k.Value)
			}
			if _, dup := key[n]; dup {
				return nil, fmt.Errorf("%w: question %d keyed twice", ErrInvalidAnswerKey, n)
			}
			key[n] = v.Value
		}
		return key, nil
	default:
		return nil, fmt.Errorf("%w: answers must be a mapping, a list or a string", ErrInvalidAnswerKey)
	}
}

// LoadAnswerKey reads an answer key file from disk.
func LoadAnswerKey(path string) (AnswerKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answer key: %w", err)
	}
	key, err := ParseAnswerKey(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return key, nil
}
