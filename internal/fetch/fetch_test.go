package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	// Create test server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.NotNil(t, result) // Result is returned even on error
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestExtractMainText_WithMainElement(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Navigation</nav>
			<main>
				<h1>Main Content</h1>
				<p>This is the important text.</p>
			</main>
			<footer>Footer</footer>
		</body>
	</html>`

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Main Content")
	assert.Contains(t, text, "important text")
	assert.NotContains(t, text, "Navigation")
	assert.NotContains(t, text, "Footer")
}

func TestExtractMainText_WithArticleElement(t *testing.T) {
	html := `
	<html>
		<body>
			<article>
				<h1>Article Title</h1>
				<p>Article body.</p>
			</article>
		</body>
	</html>`

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Article Title")
	assert.Contains(t, text, "Article body")
}

func TestExtractMainText_FallbackToBody(t *testing.T) {
	html := `
	<html>
		<body>
			<div>Some content here.</div>
		</body>
	</html>`

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Some content here")
}

func TestExtractMainText_JobPostingSelectors(t *testing.T) {
	html := `
	<html>
		<body>
			<div class="sidebar">Sidebar junk</div>
			<div class="job-description">
				<h2>Requirements</h2>
				<p>5 years experience in Go</p>
			</div>
		</body>
	</html>`

	text, err := ExtractMainText(html, JobPostingSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Requirements")
	assert.Contains(t, text, "5 years experience")
	assert.NotContains(t, text, "Sidebar junk")
}

func TestDefaultTextSelectors(t *testing.T) {
	selectors := DefaultTextSelectors()
	assert.Contains(t, selectors, "main")
	assert.Contains(t, selectors, "article")
}

func TestJobPostingSelectors(t *testing.T) {
	selectors := JobPostingSelectors()
	assert.Contains(t, selectors, ".job-description")
	assert.Contains(t, selectors, "#job-content")
}

func TestExtractMainText_BlockElementsOnSeparateLines(t *testing.T) {
	html := `<html><body><main><h1>Jane Doe</h1><p>Python</p><ul><li>Go</li><li>SQL</li></ul>a<br>b</main></body></html>`

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nPython\nGo\nSQL\na\nb", text)
}

func TestExtractDocumentText_KeepsHeader(t *testing.T) {
	html := `<html><head><style>p{}</style></head><body>
		<header><h1>Jane Doe</h1><p>jane@example.com</p></header>
		<section><h2>Skills</h2><p>Go</p></section>
		<script>alert(1)</script>
	</body></html>`

	text, err := ExtractDocumentText(html)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\njane@example.com\nSkills\nGo", text)
}

func TestURL_BodyIsCapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", MaxBodyBytes+1024)))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Len(t, result.HTML, MaxBodyBytes)
}

func TestExtractTitle(t *testing.T) {
	html := `<html><head><title>Page Title</title></head><body>
		<div class="job-title">  Site   Reliability Engineer </div><h1>Heading</h1></body></html>`

	title, err := ExtractTitle(html, ".job-title")
	require.NoError(t, err)
	assert.Equal(t, "Site Reliability Engineer", title)

	title, err = ExtractTitle(html, ".missing")
	require.NoError(t, err)
	assert.Equal(t, "Heading", title)

	title, err = ExtractTitle(`<html><head><title>Only Title</title></head><body></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "Only Title", title)

	title, err = ExtractTitle(`<p>nothing</p>`)
	require.NoError(t, err)
	assert.Empty(t, title)
}

func TestExtractDocumentText_SeparatesCellsAndInlineElements(t *testing.T) {
	html := `<html><body>
		<table><tr><td>Python</td><td>Docker</td></tr><tr><th>Kubernetes</th><td>AWS</td></tr></table>
		<p><span>Golang</span><span>Kafka</span> and <a href="#">Terraform</a>.</p>
		<dl><dt>Stack</dt><dd>Postgres</dd></dl>
		<p><b>Py</b>thon is one <em>word</em></p>
	</body></html>`

	text, err := ExtractDocumentText(html)
	require.NoError(t, err)
	words := strings.Fields(text)
	for _, w := range []string{"Python", "Docker", "Kubernetes", "AWS", "Golang", "Kafka", "Terraform", "Stack", "Postgres"} {
		assert.Contains(t, words, w)
	}
	assert.NotContains(t, text, "PythonDocker")
	assert.NotContains(t, text, "GolangKafka")
	assert.Contains(t, text, "Python is one word")
}

func TestExtractDocumentText_DropsNavigation(t *testing.T) {
	html := `<html><body><nav><a href="/">Home</a> | <a href="/about">About</a></nav>
		<div role="navigation">Menu</div>
		<main><h1>Jane Doe</h1></main><footer>jane@example.com</footer></body></html>`

	text, err := ExtractDocumentText(html)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\njane@example.com", text)
}

func TestExtractMainText_CollapsesSpaces(t *testing.T) {
	text, err := ExtractMainText("<main><p>Go   and \t Rust</p></main>", DefaultTextSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Go and Rust", text)
}
