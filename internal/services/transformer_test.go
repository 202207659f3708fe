package services

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedCatalog(now time.Time) *TransformerCatalog {
	catalog := NewTransformerCatalog("applicants.invalid")
	catalog.now = func() time.Time { return now }
	return catalog
}

func TestTransformerCatalog_StringCase(t *testing.T) {
	catalog := NewTransformerCatalog("applicants.invalid")

	t.Run("uppercase", func(t *testing.T) {
		value, present := catalog.Apply(TransformerUppercase, "hello world", true, nil)
		require.True(t, present)
		assert.Equal(t, "HELLO WORLD", value)
	})

	t.Run("lowercase", func(t *testing.T) {
		value, present := catalog.Apply(TransformerLowercase, "Hello World", true, nil)
		require.True(t, present)
		assert.Equal(t, "hello world", value)
	})

	t.Run("none passes value through unchanged", func(t *testing.T) {
		value, present := catalog.Apply(TransformerNone, 42, true, nil)
		require.True(t, present)
		assert.Equal(t, 42, value)
	})

	t.Run("absent value stays absent", func(t *testing.T) {
		_, present := catalog.Apply(TransformerUppercase, nil, false, nil)
		assert.False(t, present)
	})
}

func TestTransformerCatalog_SplitName(t *testing.T) {
	catalog := NewTransformerCatalog("applicants.invalid")

	t.Run("first token before first space", func(t *testing.T) {
		value, present := catalog.Apply(TransformerSplitFirst, "Jane Mary Doe", true, nil)
		require.True(t, present)
		assert.Equal(t, "Jane", value)
	})

	t.Run("everything after first space is the last name", func(t *testing.T) {
		value, present := catalog.Apply(TransformerSplitLast, "Jane Mary Doe", true, nil)
		require.True(t, present)
		assert.Equal(t, "Mary Doe", value)
	})

	t.Run("single token name has no last name", func(t *testing.T) {
		value, present := catalog.Apply(TransformerSplitFirst, "Cher", true, nil)
		require.True(t, present)
		assert.Equal(t, "Cher", value)

		_, present = catalog.Apply(TransformerSplitLast, "Cher", true, nil)
		assert.False(t, present)
	})

	t.Run("falls back to the record profile full name", func(t *testing.T) {
		record := SampleApplicationRecord()
		value, present := catalog.Apply(TransformerSplitFirst, nil, false, record)
		require.True(t, present)
		assert.Equal(t, "Jane", value)
	})
}

func TestTransformerCatalog_CalculateAge(t *testing.T) {
	dob := time.Date(2000, time.June, 15, 0, 0, 0, 0, time.UTC)

	t.Run("day before birthday", func(t *testing.T) {
		catalog := fixedCatalog(time.Date(2024, time.June, 14, 12, 0, 0, 0, time.UTC))
		value, present := catalog.Apply(TransformerCalculateAge, dob, true, nil)
		require.True(t, present)
		assert.Equal(t, 23, value)
	})

	t.Run("on the birthday", func(t *testing.T) {
		catalog := fixedCatalog(time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC))
		value, present := catalog.Apply(TransformerCalculateAge, dob, true, nil)
		require.True(t, present)
		assert.Equal(t, 24, value)
	})

	t.Run("accepts ISO date strings", func(t *testing.T) {
		catalog := fixedCatalog(time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC))
		value, present := catalog.Apply(TransformerCalculateAge, "2000-06-15", true, nil)
		require.True(t, present)
		assert.Equal(t, 24, value)
	})

	t.Run("malformed date degrades to absent", func(t *testing.T) {
		catalog := fixedCatalog(time.Now())
		_, present := catalog.Apply(TransformerCalculateAge, "not-a-date", true, nil)
		assert.False(t, present)
	})
}

func TestTransformerCatalog_AppendMonths(t *testing.T) {
	catalog := NewTransformerCatalog("applicants.invalid")

	value, present := catalog.Apply(TransformerAppendMonths, 36, true, nil)
	require.True(t, present)
	assert.Equal(t, "36 months", value)

	value, present = catalog.Apply(TransformerAppendMonths, float64(24), true, nil)
	require.True(t, present)
	assert.Equal(t, "24 months", value)
}

func TestTransformerCatalog_GenerateEmail(t *testing.T) {
	catalog := NewTransformerCatalog("applicants.invalid")

	t.Run("derives address from full name", func(t *testing.T) {
		value, present := catalog.Apply(TransformerGenerateEmail, "Jane Mary Doe", true, nil)
		require.True(t, present)
		assert.Equal(t, "jane.mary.doe@applicants.invalid", value)
	})

	t.Run("strips non-alphanumeric characters", func(t *testing.T) {
		value, present := catalog.Apply(TransformerGenerateEmail, "Anne-Marie O'Brien", true, nil)
		require.True(t, present)
		assert.Equal(t, "annemarie.obrien@applicants.invalid", value)
	})

	t.Run("empty cleaned name uses the fallback local part", func(t *testing.T) {
		value, present := catalog.Apply(TransformerGenerateEmail, "!!! ???", true, nil)
		require.True(t, present)
		assert.Equal(t, "applicant@applicants.invalid", value)
	})
}

func TestTransformerCatalog_DateFormat(t *testing.T) {
	catalog := NewTransformerCatalog("applicants.invalid")

	t.Run("formats native times as date only", func(t *testing.T) {
		input := time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)
		value, present := catalog.Apply(TransformerDateFormat, input, true, nil)
		require.True(t, present)
		assert.Equal(t, "2024-03-01", value)
	})

	t.Run("parses RFC3339 strings", func(t *testing.T) {
		value, present := catalog.Apply(TransformerDateFormat, "2024-03-01T09:30:00Z", true, nil)
		require.True(t, present)
		assert.Equal(t, "2024-03-01", value)
	})
}

func TestTransformerCatalog_UnknownName(t *testing.T) {
	catalog := NewTransformerCatalog("applicants.invalid")

	_, present := catalog.Apply("reverse", "value", true, nil)
	assert.False(t, present)

	assert.False(t, IsKnownTransformer("reverse"))
	assert.True(t, IsKnownTransformer(TransformerCalculateAge))
	assert.Contains(t, KnownTransformers(), TransformerGenerateEmail)
}

func TestTransformerCatalog_Properties(t *testing.T) {
	catalog := NewTransformerCatalog("applicants.invalid")

	t.Run("uppercase is idempotent", func(t *testing.T) {
		properties := gopter.NewProperties(nil)

		properties.Property("applying uppercase twice equals applying it once", prop.ForAll(
			func(input string) bool {
				once, present := catalog.Apply(TransformerUppercase, input, input != "", nil)
				if !present {
					return input == ""
				}
				twice, present := catalog.Apply(TransformerUppercase, once, true, nil)
				return present && once == twice
			},
			gen.AlphaString(),
		))

		properties.TestingRun(t, gopter.ConsoleReporter(false))
	})

	t.Run("generated emails are well-formed and deterministic", func(t *testing.T) {
		properties := gopter.NewProperties(nil)

		properties.Property("email has exactly one @ and the configured domain", prop.ForAll(
			func(name string) bool {
				first, present := catalog.Apply(TransformerGenerateEmail, name, name != "", nil)
				if !present {
					return name == ""
				}
				email, ok := first.(string)
				if !ok {
					return false
				}
				second, _ := catalog.Apply(TransformerGenerateEmail, name, true, nil)
				return strings.Count(email, "@") == 1 &&
					strings.HasSuffix(email, "@applicants.invalid") &&
					email == second
			},
			gen.AlphaString(),
		))

		properties.TestingRun(t, gopter.ConsoleReporter(false))
	})

	t.Run("split halves reassemble the trimmed name", func(t *testing.T) {
		properties := gopter.NewProperties(nil)

		properties.Property("first + last covers every multi-token name", prop.ForAll(
			func(first, last string) bool {
				full := first + " " + last
				gotFirst, present := catalog.Apply(TransformerSplitFirst, full, true, nil)
				if !present {
					return false
				}
				gotLast, lastPresent := catalog.Apply(TransformerSplitLast, full, true, nil)
				if !lastPresent {
					return false
				}
				return gotFirst.(string) == first && gotLast.(string) == last
			},
			gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
			gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		))

		properties.TestingRun(t, gopter.ConsoleReporter(false))
	})
}
