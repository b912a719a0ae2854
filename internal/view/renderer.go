package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/nurpe/waste-pickup/internal/branding"
	"github.com/nurpe/waste-pickup/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the stylesheet and script served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

type Page string

const (
	PageHome    Page = "home"
	PageRequest Page = "request"
	PageAdmin   Page = "admin"
	PageContact Page = "contact"
)

var pages = []Page{PageHome, PageRequest, PageAdmin, PageContact}

func ParsePage(raw string) (Page, bool) {
	for _, p := range pages {
		if string(p) == raw {
			return p, true
		}
	}
	return "", false
}

type Region string

const (
	RegionHeader        Region = "header"
	RegionNav           Region = "nav"
	RegionStats         Region = "stats"
	RegionRequestForm   Region = "request-form"
	RegionEstimate      Region = "estimate"
	RegionUserMessage   Region = "user-message"
	RegionUserRequests  Region = "user-requests"
	RegionAdminRequests Region = "admin-requests"
	RegionNotice        Region = "notice"
	RegionContact       Region = "contact"
)

type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
)

type Banner struct {
	Kind BannerKind
	Text string
}

type FormValues struct {
	Name      string
	Phone     string
	Address   string
	Area      string
	WasteType string
	Weight    string
}

type PageData struct {
	Branding   branding.Branding
	Page       Page
	Pages      []Page
	Stats      model.Stats
	UserCards  []Card
	AdminCards []Card
	LoggedIn   bool
	Banner     *Banner
	Notice     string
	Form       FormValues
	Estimate   string
	Submitting bool
	Categories []string
}

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"pageTitle": pageTitle,
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) RenderPage(w io.Writer, data PageData) error {
	if data.Pages == nil {
		data.Pages = pages
	}
	return r.tmpl.ExecuteTemplate(w, "page", data)
}

// RenderRegion renders one replaceable fragment of the page.
func (r *Renderer) RenderRegion(region Region, data PageData) (string, error) {
	if data.Pages == nil {
		data.Pages = pages
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, string(region), data); err != nil {
		return "", fmt.Errorf("render %s: %w", region, err)
	}
	return buf.String(), nil
}

func pageTitle(p Page) string {
	switch p {
	case PageHome:
		return "Home"
	case PageRequest:
		return "Request Pickup"
	case PageAdmin:
		return "Admin"
	case PageContact:
		return "Contact"
	default:
		return string(p)
	}
}
