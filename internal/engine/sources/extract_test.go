package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractWithGoqueryDropsBoilerplate(t *testing.T) {
	html := `<html><body>
<header>Site header</header>
<nav>Menu</nav>
<main><h2>Release notes</h2><p>Version <em>2.0</em> adds generics.</p></main>
<footer>Copyright</footer>
<script>alert(1)</script>
</body></html>`

	got := extractWithGoquery(html)
	assert.Contains(t, got, "Release notes")
	assert.Contains(t, got, "adds generics")
	assert.NotContains(t, got, "Menu")
	assert.NotContains(t, got, "Copyright")
	assert.NotContains(t, got, "alert")
}

func TestExtractWithGoqueryFallsBackToBody(t *testing.T) {
	got := extractWithGoquery(`<html><body><div>plain <b>body</b></div><aside>ads</aside></body></html>`)
	assert.Contains(t, got, "plain **body**")
	assert.NotContains(t, got, "ads")
}

func TestExtractHTMLNeverEmptyForText(t *testing.T) {
	assert.NotEmpty(t, extractHTML(`<p>just a paragraph</p>`, ""))
}

func TestIsHTML(t *testing.T) {
	assert.True(t, isHTML("text/html; charset=utf-8"))
	assert.False(t, isHTML("text/plain"))
	assert.False(t, isHTML(""))
}
