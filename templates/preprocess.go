package templates

import (
	"regexp"
	"strings"
)

// symbols are plain substitutions for notation the patterns do not read.
var symbols = strings.NewReplacer(
	"½", "1/2", "⅓", "1/3", "⅔", "2/3", "¼", "1/4", "¾", "3/4",
	"θ", "theta", "π", "pi", "°", " degrees",
	"−", "-", "–", "-",
	"^2", "²",
)

// phrases are rewritten only as whole words, so "find theta" keeps its
// variable. They run in order; earlier entries may feed later ones.
var phrases = []struct {
	re  *regexp.Regexp
	new string
}{
	{wordRe("acute angle"), "acute"},
	{wordRe("right angle"), "90 degrees"},
	{wordRe("find the"), "find"},
	{wordRe("what is the"), "what is"},
	{wordRe("calculate the"), "calculate"},
	{wordRe("compute the"), "compute"},
	{wordRe("determine the"), "determine"},
	{wordRe("show me"), "show"},
	{wordRe("sketch the graph"), "sketch graph"},
	{wordRe("plot the graph"), "plot graph"},
	{wordRe("without using a calculator"), "without calculator"},
	{wordRe("without using calculator"), "without calculator"},
	{wordRe("without a calculator"), "without calculator"},
	{wordRe("f of x"), "f(x)"},
}

var tidy = strings.NewReplacer("f(x) =", "f(x)=", "degrees degrees", "degrees")

func wordRe(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
}

// Preprocess lower-cases the question, collapses whitespace and rewrites
// common phrasings so the template patterns see one canonical form.
func Preprocess(question string) string {
	cleaned := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	cleaned = symbols.Replace(cleaned)
	for _, p := range phrases {
		cleaned = p.re.ReplaceAllLiteralString(cleaned, p.new)
	}
	return strings.Join(strings.Fields(tidy.Replace(cleaned)), " ")
}
