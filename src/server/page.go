package server

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iafilius/MediaTrendsDashboard/src/dashboard"
)

type navLink struct {
	ID       string
	Href     string
	Label    string
	Selected bool
}

type chartCard struct {
	Slot    string
	Title   string
	Hint    string
	Live    bool
	Problem string
}

type pageData struct {
	Title       string
	Theme       string
	Active      string
	Desktop     []navLink
	Mobile      []navLink
	Fab         []navLink
	Charts      []chartCard
	Diagnostics int
	Stamp       int64
}

func (s *Server) navLinks(prefix string) []navLink {
	var out []navLink
	for _, sec := range s.d.Sections.Sections() {
		id := prefix + "-" + string(sec)
		out = append(out, navLink{
			ID:       id,
			Href:     "/sections/" + string(sec),
			Label:    sec.Title(),
			Selected: s.d.Sections.IsSelected(id),
		})
	}
	return out
}

func (s *Server) pageData() pageData {
	active := s.d.Sections.Active()
	data := pageData{
		Title:       dashboard.Title,
		Theme:       string(s.d.Theme()),
		Active:      active.Title(),
		Desktop:     s.navLinks("desktop"),
		Mobile:      s.navLinks("mobile"),
		Fab:         s.navLinks("fab"),
		Diagnostics: s.d.Diag.Len(),
		Stamp:       time.Now().UnixNano(),
	}
	for _, v := range s.d.ViewsIn(active) {
		card := chartCard{Slot: v.Slot, Title: v.Title, Hint: v.Hint}
		_, card.Live = s.d.Registry.Handle(v.Slot)
		if !card.Live {
			if entries := s.d.Diag.ForSlot(v.Slot); len(entries) > 0 {
				card.Problem = string(entries[len(entries)-1].Kind)
			}
		}
		data.Charts = append(data.Charts, card)
	}
	return data
}

func (s *Server) servePage(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, s.pageData()); err != nil {
		fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

const pageHTML = `<!doctype html>
<html lang="en" data-theme="{{.Theme}}">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <style>
    :root { --bg: #f5f6f8; --ink: #1b1b1b; --card: #ffffff; --muted: #6b6b6b; --accent: #4e79a7; --border: #dde1e6; }
    [data-theme="dark"] { --bg: #121212; --ink: #e6e6e6; --card: #1e1e1e; --muted: #9a9a9a; --accent: #76b7b2; --border: #2c2c2c; }
    * { box-sizing: border-box; }
    body { margin: 0; font-family: "Segoe UI", "Helvetica Neue", Arial, sans-serif; background: var(--bg); color: var(--ink); }
    header { padding: 16px 28px; border-bottom: 1px solid var(--border); display: flex; align-items: center; gap: 24px; position: sticky; top: 0; background: var(--bg); z-index: 5; }
    h1 { margin: 0; font-size: 20px; }
    nav a { margin-right: 14px; color: var(--muted); text-decoration: none; padding-bottom: 4px; }
    nav a.active { color: var(--accent); border-bottom: 2px solid var(--accent); }
    .tools { margin-left: auto; display: flex; gap: 8px; align-items: center; font-size: 13px; }
    .tools button, .tools a { background: var(--card); color: var(--ink); border: 1px solid var(--border); border-radius: 6px; padding: 6px 10px; cursor: pointer; text-decoration: none; }
    #mobile-nav, #fab-nav { display: none; }
    main { padding: 20px 28px; display: grid; gap: 20px; }
    .card { background: var(--card); border: 1px solid var(--border); border-radius: 10px; padding: 14px; }
    .card h2 { margin: 0 0 8px; font-size: 15px; }
    .card img { width: 100%; height: auto; display: block; }
    .empty { height: 240px; }
    .hint, .problem { color: var(--muted); font-size: 12px; }
    @media (max-width: 720px) {
      #desktop-nav { display: none; }
      #mobile-nav { display: block; }
      #fab-nav { display: block; position: fixed; right: 16px; bottom: 16px; background: var(--card); border: 1px solid var(--border); border-radius: 10px; padding: 8px; }
      #fab-nav a { display: block; margin: 4px 0; }
    }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <nav id="desktop-nav">{{range .Desktop}}<a id="{{.ID}}" href="{{.Href}}"{{if .Selected}} class="active"{{end}}>{{.Label}}</a>{{end}}</nav>
    <nav id="mobile-nav">{{range .Mobile}}<a id="{{.ID}}" href="{{.Href}}"{{if .Selected}} class="active"{{end}}>{{.Label}}</a>{{end}}</nav>
    <div class="tools">
      <button onclick="post('/api/refresh')">Refresh</button>
      <button onclick="post('/api/theme')">Theme</button>
      <button onclick="post('/api/hints')">Hints</button>
      <a href="/report.html">HTML report</a>
      <a href="/report.xlsx">Workbook</a>
      <a href="/api/diagnostics">Diagnostics ({{.Diagnostics}})</a>
    </div>
  </header>
  <main>
    <p class="hint">Section: {{.Active}}</p>
    {{range .Charts}}
    <section class="card" id="card-{{.Slot}}">
      <h2>{{.Title}}</h2>
      {{if .Live}}
      <img id="{{.Slot}}" src="/charts/{{.Slot}}/image.png?t={{$.Stamp}}" alt="{{.Title}}" />
      <p><a href="/charts/{{.Slot}}/export.png">Download PNG</a></p>
      {{else}}
      <div class="empty" id="{{.Slot}}"></div>
      {{if .Problem}}<p class="problem">No chart ({{.Problem}})</p>{{end}}
      {{end}}
      {{if .Hint}}<p class="hint">{{.Hint}}</p>{{end}}
    </section>
    {{end}}
  </main>
  <nav id="fab-nav">{{range .Fab}}<a id="{{.ID}}" href="{{.Href}}"{{if .Selected}} class="active"{{end}}>{{.Label}}</a>{{end}}</nav>
  <script>
    function post(url) { fetch(url, { method: 'POST' }).then(function () { location.reload(); }); }
  </script>
</body>
</html>
`
