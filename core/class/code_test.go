package class

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := generateCode(8)
		require.NoError(t, err)
		assert.Len(t, code, 8)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected %q in %s", r, code)
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "AB12CD34", normalizeCode("  ab12cd34\n"))
}

func TestService_withFreshCode(t *testing.T) {
	newSvc := func(codes ...string) *Service {
		return &Service{
			codeLen:      8,
			codeAttempts: 3,
			genCode: func(n int) (string, error) {
				code := codes[0]
				codes = codes[1:]
				return code, nil
			},
		}
	}

	t.Run("retries taken codes", func(t *testing.T) {
		taken := map[string]bool{"AAAA1111": true, "BBBB2222": true}
		var tried []string
		cls, err := newSvc("AAAA1111", "BBBB2222", "CCCC3333").withFreshCode(func(code string) (Class, error) {
			tried = append(tried, code)
			if taken[code] {
				return Class{}, ErrCodeTaken
			}
			return Class{EnrollmentCode: code}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "CCCC3333", cls.EnrollmentCode)
		assert.Equal(t, []string{"AAAA1111", "BBBB2222", "CCCC3333"}, tried)
	})

	t.Run("gives up", func(t *testing.T) {
		_, err := newSvc("A", "B", "C", "D").withFreshCode(func(string) (Class, error) {
			return Class{}, ErrCodeTaken
		})
		assert.Equal(t, ErrCodeExhausted, err)
	})

	t.Run("other errors stop", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		_, err := newSvc("A", "B", "C").withFreshCode(func(string) (Class, error) {
			calls++
			return Class{}, boom
		})
		assert.Equal(t, boom, err)
		assert.Equal(t, 1, calls)
	})
}
