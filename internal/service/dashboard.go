package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/waste-pickup/internal/branding"
	"github.com/nurpe/waste-pickup/internal/model"
	"github.com/nurpe/waste-pickup/internal/pricing"
	"github.com/nurpe/waste-pickup/internal/view"
)

const (
	msgSubmitted      = "Request submitted successfully! Our team will collect waste from your location soon."
	msgSubmitFailed   = "Failed to submit request. Please try again."
	msgUpdateFailed   = "Failed to update status. Please try again."
	msgDeleteFailed   = "Failed to delete request. Please try again."
	msgBadCredentials = "Invalid credentials! Use admin/admin123"
)

// DataSDK is the persistence collaborator. Changes become visible only through OnDataChanged.
type DataSDK interface {
	Create(ctx context.Context, req *model.WasteRequest) error
	Update(ctx context.Context, req *model.WasteRequest) error
	Delete(ctx context.Context, req *model.WasteRequest) error
}

// Publisher receives freshly rendered regions of a dashboard and reports how many live clients got
// them.
type Publisher interface {
	Publish(region view.Region, html string) int
}

type DashboardOptions struct {
	MaxRequests int
	BannerTTL   time.Duration
	Location    *time.Location
	Now         func() time.Time
}

type SubmitInput struct {
	Name      string
	Phone     string
	Address   string
	Area      string
	WasteType string
	Weight    string
}

type dashboardState struct {
	requests   []*model.WasteRequest
	stats      model.Stats
	userCards  []view.Card
	adminCards []view.Card
	gate       SessionGate
	branding   branding.Branding
	page       view.Page
	form       view.FormValues
	estimate   string
	submitting bool
	banner     *view.Banner
	bannerSeq  uint64
	notice     string
}

// Dashboard is the state of one browser session: a mirror of the store's dataset plus everything the
// page shows. It changes only through its methods; every change re-renders the affected regions.
type Dashboard struct {
	sdk      DataSDK
	renderer *view.Renderer
	log      zerolog.Logger
	opts     DashboardOptions

	mu          sync.Mutex
	state       dashboardState
	publisher   Publisher
	bannerTimer *time.Timer
	closed      bool
}

func NewDashboard(sdk DataSDK, renderer *view.Renderer, log zerolog.Logger, opts DashboardOptions) *Dashboard {
	if opts.MaxRequests <= 0 {
		opts.MaxRequests = 999
	}
	if opts.BannerTTL <= 0 {
		opts.BannerTTL = 5 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	d := &Dashboard{
		sdk:      sdk,
		renderer: renderer,
		log:      log,
		opts:     opts,
	}
	d.state.branding = branding.Default()
	d.state.page = view.PageHome
	d.state.userCards = view.UserCards(nil, opts.Location)
	return d
}

func (d *Dashboard) SetPublisher(p Publisher) {
	d.mu.Lock()
	d.publisher = p
	d.mu.Unlock()
}

func (d *Dashboard) now() time.Time {
	return d.opts.Now().In(d.opts.Location)
}

// OnDataChanged replaces the local snapshot wholesale and recomputes everything derived from it.
func (d *Dashboard) OnDataChanged(snapshot []*model.WasteRequest) {
	d.mu.Lock()
	d.state.requests = snapshot
	d.recomputeLocked()
	regions := []view.Region{view.RegionStats, view.RegionUserRequests}
	if d.state.gate.LoggedIn() {
		regions = append(regions, view.RegionAdminRequests)
	}
	d.mu.Unlock()

	d.refresh(regions...)
}

func (d *Dashboard) recomputeLocked() {
	d.state.stats = ComputeStats(d.state.requests, d.now())
	d.state.userCards = view.UserCards(d.state.requests, d.opts.Location)
	if d.state.gate.LoggedIn() {
		d.state.adminCards = view.AdminCards(d.state.requests, d.opts.Location)
	}
}

// OnConfigChange applies branding overrides from the config collaborator.
func (d *Dashboard) OnConfigChange(cfg branding.Config) {
	d.mu.Lock()
	d.state.branding = branding.Resolve(cfg)
	d.mu.Unlock()

	d.refresh(view.RegionHeader, view.RegionContact)
}

func (d *Dashboard) Navigate(page view.Page) error {
	if _, ok := view.ParsePage(string(page)); !ok {
		return fmt.Errorf("%w: unknown page %q", ErrInvalidInput, page)
	}
	d.mu.Lock()
	d.state.page = page
	d.mu.Unlock()

	d.refresh(view.RegionNav)
	return nil
}

// UpdateEstimate recomputes the price preview for the request form.
func (d *Dashboard) UpdateEstimate(category, weight string) string {
	estimate := pricing.Estimate(category, weight)

	d.mu.Lock()
	d.state.form.WasteType = category
	d.state.form.Weight = weight
	d.state.estimate = estimate
	d.mu.Unlock()

	d.refresh(view.RegionEstimate)
	return estimate
}

// Submit hands a new request to the store. The list is not touched here; it changes when the store
// reports the new dataset.
func (d *Dashboard) Submit(ctx context.Context, in SubmitInput) error {
	in = trimInput(in)
	weight := pricing.ParseWeight(in.Weight)
	if !pricing.IsCategory(in.WasteType) {
		return fmt.Errorf("%w: unknown waste type %q", ErrInvalidInput, in.WasteType)
	}
	if weight <= 0 {
		return fmt.Errorf("%w: weight must be a positive number", ErrInvalidInput)
	}
	if in.Name == "" || in.Phone == "" || in.Address == "" || in.Area == "" {
		return fmt.Errorf("%w: name, phone, address and area are required", ErrInvalidInput)
	}

	d.mu.Lock()
	if d.state.submitting {
		d.mu.Unlock()
		return ErrSubmitInProgress
	}
	d.state.form = view.FormValues(in)

	if len(d.state.requests) >= d.opts.MaxRequests {
		d.showBannerLocked(view.BannerError, fmt.Sprintf("Maximum limit of %d requests reached. Please contact admin.", d.opts.MaxRequests))
		d.mu.Unlock()
		d.refresh(view.RegionRequestForm, view.RegionUserMessage)
		return ErrCapacityReached
	}

	now := d.now()
	req := &model.WasteRequest{
		ID:        strconv.FormatInt(now.UnixMilli(), 10),
		UserType:  model.SubmitterPublic,
		Name:      in.Name,
		Phone:     in.Phone,
		Address:   in.Address,
		Area:      in.Area,
		WasteType: in.WasteType,
		Weight:    weight,
		Price:     pricing.Price(in.WasteType, weight),
		Status:    model.StatusPending,
		CreatedAt: now,
	}
	d.state.submitting = true
	d.mu.Unlock()
	d.refresh(view.RegionRequestForm)

	err := d.sdk.Create(ctx, req)

	d.mu.Lock()
	d.state.submitting = false
	if err != nil {
		d.showBannerLocked(view.BannerError, msgSubmitFailed)
	} else {
		d.showBannerLocked(view.BannerSuccess, msgSubmitted)
		d.state.form = view.FormValues{}
		d.state.estimate = ""
	}
	d.mu.Unlock()
	d.refresh(view.RegionRequestForm, view.RegionUserMessage)

	if err != nil {
		d.log.Error().Err(err).Str("request_id", req.ID).Msg("create request failed")
		return fmt.Errorf("%w: %v", ErrCollaborator, err)
	}
	d.log.Info().Str("request_id", req.ID).Str("waste_type", req.WasteType).Float64("weight", req.Weight).Msg("request submitted")
	return nil
}

// SetStatus changes the status of the local record first and then asks the store to persist that
// same record. A failed update is reported but the local change stays until the next snapshot.
func (d *Dashboard) SetStatus(ctx context.Context, backendID uuid.UUID, status model.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	d.mu.Lock()
	if !d.state.gate.LoggedIn() {
		d.mu.Unlock()
		return ErrPermissionDenied
	}
	req := d.findLocked(backendID)
	if req == nil {
		d.mu.Unlock()
		return nil
	}
	req.Status = status
	persisted := req.Clone()
	d.recomputeLocked()
	d.mu.Unlock()
	d.refresh(view.RegionUserRequests, view.RegionAdminRequests)

	if err := d.sdk.Update(ctx, persisted); err != nil {
		d.log.Error().Err(err).Str("backend_id", backendID.String()).Msg("update request status failed")
		d.setNotice(msgUpdateFailed)
		return fmt.Errorf("%w: %v", ErrCollaborator, err)
	}
	return nil
}

// Delete asks the store to remove a request; the card disappears with the next snapshot.
func (d *Dashboard) Delete(ctx context.Context, backendID uuid.UUID) error {
	d.mu.Lock()
	if !d.state.gate.LoggedIn() {
		d.mu.Unlock()
		return ErrPermissionDenied
	}
	req := d.findLocked(backendID)
	d.mu.Unlock()
	if req == nil {
		return nil
	}

	if err := d.sdk.Delete(ctx, req); err != nil {
		d.log.Error().Err(err).Str("backend_id", backendID.String()).Msg("delete request failed")
		d.setNotice(msgDeleteFailed)
		return fmt.Errorf("%w: %v", ErrCollaborator, err)
	}
	return nil
}

func (d *Dashboard) Login(username, password string) error {
	d.mu.Lock()
	if err := d.state.gate.Login(username, password); err != nil {
		d.state.notice = msgBadCredentials
		d.mu.Unlock()
		d.refresh(view.RegionNotice)
		return err
	}
	d.state.adminCards = view.AdminCards(d.state.requests, d.opts.Location)
	d.mu.Unlock()

	d.log.Info().Msg("admin logged in")
	d.refresh(view.RegionAdminRequests)
	return nil
}

func (d *Dashboard) LoggedIn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.gate.LoggedIn()
}

func (d *Dashboard) Stats() model.Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.stats
}

func (d *Dashboard) Banner() *view.Banner {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.banner == nil {
		return nil
	}
	b := *d.state.banner
	return &b
}

func (d *Dashboard) Branding() branding.Branding {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.branding
}

// Snapshot returns a copy of the local mirror.
func (d *Dashboard) Snapshot() []*model.WasteRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return model.CloneAll(d.state.requests)
}

// Page assembles the data of a full page render. A pending notice is shown once.
func (d *Dashboard) Page() view.PageData {
	d.mu.Lock()
	defer d.mu.Unlock()
	data := d.pageDataLocked()
	d.state.notice = ""
	return data
}

func (d *Dashboard) pageDataLocked() view.PageData {
	var banner *view.Banner
	if d.state.banner != nil {
		b := *d.state.banner
		banner = &b
	}
	data := view.PageData{
		Branding:   d.state.branding,
		Page:       d.state.page,
		Stats:      d.state.stats,
		UserCards:  d.state.userCards,
		LoggedIn:   d.state.gate.LoggedIn(),
		Banner:     banner,
		Notice:     d.state.notice,
		Form:       d.state.form,
		Estimate:   d.state.estimate,
		Submitting: d.state.submitting,
		Categories: pricing.Categories(),
	}
	if data.LoggedIn {
		data.AdminCards = d.state.adminCards
	}
	return data
}

// Close stops the banner timer; the dashboard publishes nothing afterwards.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.bannerTimer != nil {
		d.bannerTimer.Stop()
	}
	d.publisher = nil
}

func (d *Dashboard) findLocked(backendID uuid.UUID) *model.WasteRequest {
	for _, req := range d.state.requests {
		if req.BackendID == backendID {
			return req
		}
	}
	return nil
}

func (d *Dashboard) setNotice(text string) {
	d.mu.Lock()
	d.state.notice = text
	d.mu.Unlock()
	d.refresh(view.RegionNotice)
}

func (d *Dashboard) showBannerLocked(kind view.BannerKind, text string) {
	d.state.banner = &view.Banner{Kind: kind, Text: text}
	d.state.bannerSeq++
	seq := d.state.bannerSeq
	if d.bannerTimer != nil {
		d.bannerTimer.Stop()
	}
	if d.closed {
		return
	}
	d.bannerTimer = time.AfterFunc(d.opts.BannerTTL, func() {
		d.clearBanner(seq)
	})
}

func (d *Dashboard) clearBanner(seq uint64) {
	d.mu.Lock()
	if d.state.bannerSeq != seq {
		d.mu.Unlock()
		return
	}
	d.state.banner = nil
	d.mu.Unlock()
	d.refresh(view.RegionUserMessage)
}

// refresh renders the given regions from the current state and hands them to the publisher.
func (d *Dashboard) refresh(regions ...view.Region) {
	d.mu.Lock()
	publisher := d.publisher
	if publisher == nil || d.renderer == nil {
		d.mu.Unlock()
		return
	}
	data := d.pageDataLocked()
	d.mu.Unlock()

	for _, region := range regions {
		html, err := d.renderer.RenderRegion(region, data)
		if err != nil {
			d.log.Error().Err(err).Str("region", string(region)).Msg("render region failed")
			continue
		}
		delivered := publisher.Publish(region, html)
		if region == view.RegionNotice && delivered > 0 {
			d.consumeNotice(data.Notice)
		}
	}
}

// consumeNotice drops a notice that live clients already alerted, so the next full render does not
// show it again.
func (d *Dashboard) consumeNotice(text string) {
	if text == "" {
		return
	}
	d.mu.Lock()
	if d.state.notice == text {
		d.state.notice = ""
	}
	d.mu.Unlock()
}

func trimInput(in SubmitInput) SubmitInput {
	return SubmitInput{
		Name:      strings.TrimSpace(in.Name),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		Area:      strings.TrimSpace(in.Area),
		WasteType: strings.TrimSpace(in.WasteType),
		Weight:    strings.TrimSpace(in.Weight),
	}
}
