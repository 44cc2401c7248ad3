package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitIdentifier_CamelCase(t *testing.T) {
	assert.Equal(t, []string{"foo", "bar"}, splitIdentifier("fooBar"))
	assert.Equal(t, []string{"foo", "bar"}, splitIdentifier("FooBar"))
}

func TestSplitIdentifier_AcronymPeeling(t *testing.T) {
	assert.Equal(t, []string{"http", "server"}, splitIdentifier("HTTPServer"))
}

func TestSplitIdentifier_SeparatorsAndDigits(t *testing.T) {
	assert.Equal(t, []string{"max", "file", "size"}, splitIdentifier("max_file_size"))
	assert.Equal(t, []string{"utf", "8"}, splitIdentifier("utf-8"))
	assert.Equal(t, []string{"chunk", "2", "name"}, splitIdentifier("chunk2Name"))
}

func TestTokenizeText_SplitsProseAndIdentifiers(t *testing.T) {
	got := tokenizeText("call fooBar() from main.go")
	assert.Equal(t, []string{"call", "foo", "bar", "from", "main", "go"}, got)
}

func TestStemmer_EnglishStemsRunningToRun(t *testing.T) {
	s := Stemmer{Enabled: true, Language: "english"}
	assert.Equal(t, "run", s.Stem("running"))
}

func TestStemmer_DisabledPassesThrough(t *testing.T) {
	s := Stemmer{Enabled: false, Language: "english"}
	assert.Equal(t, "running", s.Stem("running"))
}

func TestStemmer_UnsupportedLanguagePassesThrough(t *testing.T) {
	s := Stemmer{Enabled: true, Language: "fr"}
	assert.Equal(t, "running", s.Stem("running"))
}
