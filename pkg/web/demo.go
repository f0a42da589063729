package web

import (
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/slulibrary/nerdemo/pkg/models"
	"github.com/slulibrary/nerdemo/pkg/render"
)

var DemoTemplates = []string{
	"templates/demo.html",
}

// DemoView is the data behind the demo page.
type DemoView struct {
	Title  string
	Intro  string
	Prompt string
	// Text is the session's current input.
	Text      string
	Echo      bool
	Submitted bool
	Result    *DemoResult
	Error     string
	Notice    string
	Heading   string
}

// DemoResult is the outcome of one extraction.
type DemoResult struct {
	// Visualization is a standalone HTML document for the iframe srcdoc.
	Visualization string
	Entities      []models.Entity
	ShowTable     bool
	RawResponse   template.HTML
}

// DemoHandler serves the demo form. With no extractor it runs the echo
// variant, which only repeats the input back.
type DemoHandler struct {
	extractor models.Extractor
	sessions  *SessionStore
	echo      bool
}

func NewDemoHandler(appState *models.AppState, sessions *SessionStore) *DemoHandler {
	return &DemoHandler{
		extractor: appState.Extractor,
		sessions:  sessions,
		echo:      appState.Config.UI.Echo || appState.Extractor == nil,
	}
}

func (h *DemoHandler) newView(text string) *DemoView {
	return &DemoView{
		Title:   PageTitle,
		Intro:   PageIntro,
		Prompt:  FormPrompt,
		Text:    text,
		Echo:    h.echo,
		Notice:  NoEntitiesNotice,
		Heading: EntitiesHeading,
	}
}

// Get renders the form with the session's current input.
func (h *DemoHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, sess := h.sessions.Load(w, r)
	NewPage(TabTitle, DemoTemplates, h.newView(sess.Text)).Render(w, r)
}

// Post stores the submitted text in the session and shows what was found in it.
func (h *DemoHandler) Post(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		log.Debugf("invalid demo form: %s", err)
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	text := r.PostForm.Get("text")

	id, sess := h.sessions.Load(w, r)
	sess.Text = text
	h.sessions.Save(id, sess)

	view := h.newView(text)
	view.Submitted = true
	page := NewPage(TabTitle, DemoTemplates, view)

	if h.echo {
		page.Render(w, r)
		return
	}

	result, err := h.extract(r, text)
	if err != nil {
		log.Errorf("demo extraction failed: %s", err)
		view.Submitted = false
		view.Error = "Entity extraction failed. Please try again."
		page.Status = http.StatusInternalServerError
		page.Render(w, r)
		return
	}

	view.Result = result
	page.Render(w, r)
}

func (h *DemoHandler) extract(r *http.Request, text string) (*DemoResult, error) {
	doc, err := h.extractor.Process(r.Context(), text)
	if err != nil {
		return nil, err
	}

	visualization, err := render.Render(doc, true)
	if err != nil {
		return nil, err
	}

	raw, err := json.MarshalIndent(models.NewExtractionResponse(text, doc.Entities), "", "  ")
	if err != nil {
		return nil, err
	}
	rawResponse, err := CodeHighlight(string(raw), "json")
	if err != nil {
		return nil, err
	}

	return &DemoResult{
		Visualization: visualization,
		Entities:      doc.Entities,
		ShowTable:     doc.HasEntities(),
		RawResponse:   rawResponse,
	}, nil
}

// StaticHandler serves the embedded stylesheet under /static/.
func StaticHandler() http.Handler {
	static, err := fs.Sub(StaticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(static)))
}
