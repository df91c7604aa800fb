package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"societyhub/internal/model"
)

type couponFixture struct {
	svc       *CouponService
	coupons   *fakeCouponRepo
	societies *fakeSocietyRepo
	events    *fakeEventRepo
	residents *fakeResidentRepo
	society   *model.Society
	event     *model.Event
}

func newCouponFixture(t *testing.T) *couponFixture {
	t.Helper()

	coupons := newFakeCouponRepo()
	societies := newFakeSocietyRepo()
	events := newFakeEventRepo()
	residents := newFakeResidentRepo()

	society := &model.Society{
		ID:         uuid.New(),
		Name:       "Green Meadows",
		Location:   "Pune",
		Flats:      []string{"A-101", "A-102", "B-201"},
		AdminEmail: "admin@greenmeadows.test",
	}
	if err := societies.Create(context.Background(), society); err != nil {
		t.Fatalf("seed society: %v", err)
	}
	coupons.societyNames[society.ID] = society.Name

	event := &model.Event{
		ID:         uuid.New(),
		Title:      "Diwali Dinner",
		Date:       "2026-11-08",
		AdminEmail: society.AdminEmail,
	}
	if err := events.Create(context.Background(), event); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	coupons.eventTitles[event.ID] = event.Title

	return &couponFixture{
		svc:       NewCouponService(coupons, societies, events, residents, nil),
		coupons:   coupons,
		societies: societies,
		events:    events,
		residents: residents,
		society:   society,
		event:     event,
	}
}

func (f *couponFixture) issueRequest() IssueCouponRequest {
	return IssueCouponRequest{
		SocietyID:  f.society.ID.String(),
		EventID:    f.event.ID.String(),
		FlatNo:     "A-101",
		UserName:   "Asha Rao",
		Code:       "DIWALI26",
		ExpiryDate: futureDate(),
		AdminEmail: f.society.AdminEmail,
	}
}

func futureDate() string {
	return time.Now().UTC().AddDate(0, 0, 30).Format("2006-01-02")
}

func pastDate() string {
	return time.Now().UTC().AddDate(0, 0, -2).Format("2006-01-02")
}

func TestIssue_SingleCoupon(t *testing.T) {
	t.Parallel()

	fx := newCouponFixture(t)
	issued, err := fx.svc.Issue(context.Background(), fx.issueRequest())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(issued) != 1 {
		t.Fatalf("expected 1 coupon, got %d", len(issued))
	}

	coupon := issued[0]
	if coupon.Code != "DIWALI26" {
		t.Errorf("code = %q, want DIWALI26", coupon.Code)
	}
	if coupon.Status != model.CouponStatusActive || coupon.Used {
		t.Errorf("fresh coupon should be active and unused, got status=%s used=%v", coupon.Status, coupon.Used)
	}
	if !strings.HasPrefix(coupon.QRCode, "data:image/png;base64,") {
		t.Errorf("QR code is not a PNG data URL: %q", coupon.QRCode[:min(len(coupon.QRCode), 40)])
	}

	stored, err := fx.coupons.FindByID(context.Background(), coupon.ID)
	if err != nil {
		t.Fatalf("coupon was not persisted: %v", err)
	}
	if stored.AdminEmail != fx.society.AdminEmail {
		t.Errorf("adminEmail = %q, want %q", stored.AdminEmail, fx.society.AdminEmail)
	}
}

func TestIssue_RejectsMissingSocietyOrEvent(t *testing.T) {
	t.Parallel()

	fx := newCouponFixture(t)

	req := fx.issueRequest()
	req.SocietyID = ""
	if _, err := fx.svc.Issue(context.Background(), req); !errors.Is(err, ErrSocietyEventRequired) {
		t.Errorf("missing society: err = %v, want ErrSocietyEventRequired", err)
	}

	req = fx.issueRequest()
	req.EventID = "not-a-uuid"
	if _, err := fx.svc.Issue(context.Background(), req); !errors.Is(err, ErrSocietyEventRequired) {
		t.Errorf("bad event id: err = %v, want ErrSocietyEventRequired", err)
	}

	req = fx.issueRequest()
	req.SocietyID = uuid.NewString()
	if _, err := fx.svc.Issue(context.Background(), req); !errors.Is(err, ErrSocietyNotFound) {
		t.Errorf("unknown society: err = %v, want ErrSocietyNotFound", err)
	}

	req = fx.issueRequest()
	req.EventID = uuid.NewString()
	if _, err := fx.svc.Issue(context.Background(), req); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("unknown event: err = %v, want ErrEventNotFound", err)
	}
}

func TestIssue_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	fx := newCouponFixture(t)

	mutations := map[string]func(*IssueCouponRequest){
		"empty code":       func(r *IssueCouponRequest) { r.Code = "  " },
		"empty expiry":     func(r *IssueCouponRequest) { r.ExpiryDate = "" },
		"bad expiry":       func(r *IssueCouponRequest) { r.ExpiryDate = "08-11-2026" },
		"empty adminEmail": func(r *IssueCouponRequest) { r.AdminEmail = "" },
		"empty flatNo":     func(r *IssueCouponRequest) { r.FlatNo = "" },
	}
	for name, mutate := range mutations {
		req := fx.issueRequest()
		mutate(&req)
		if _, err := fx.svc.Issue(context.Background(), req); !errors.Is(err, ErrInvalidCouponInput) {
			t.Errorf("%s: err = %v, want ErrInvalidCouponInput", name, err)
		}
	}
}

func TestIssue_AllowsBlankHolderName(t *testing.T) {
	t.Parallel()

	fx := newCouponFixture(t)
	req := fx.issueRequest()
	req.UserName = "  "

	issued, err := fx.svc.Issue(context.Background(), req)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if issued[0].UserName != "" {
		t.Errorf("userName = %q, want blank holder stored as-is", issued[0].UserName)
	}
}

func TestIssue_BulkGeneratesPerFlat(t *testing.T) {
	t.Parallel()

	fx := newCouponFixture(t)
	resident := &model.Resident{
		ID:         uuid.New(),
		Name:       "Meera Joshi",
		FlatNumber: "A-102",
		SocietyID:  fx.society.ID,
		AdminEmail: fx.society.AdminEmail,
	}
	if err := fx.residents.Create(context.Background(), resident); err != nil {
		t.Fatalf("seed resident: %v", err)
	}

	req := fx.issueRequest()
	req.GenerateForAllFlats = true
	req.Flats = []string{"A 101", "A-102", "", "A-102"}
	req.FlatNo = ""
	req.UserName = ""

	issued, err := fx.svc.Issue(context.Background(), req)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(issued) != 2 {
		t.Fatalf("expected 2 coupons after dedup, got %d", len(issued))
	}

	byFlat := make(map[string]*model.Coupon, len(issued))
	for _, coupon := range issued {
		byFlat[coupon.FlatNo] = coupon
	}

	first, ok := byFlat["A 101"]
	if !ok {
		t.Fatal("no coupon for flat A 101")
	}
	if first.Code != "DIWALI26-A101" {
		t.Errorf("flat code = %q, want DIWALI26-A101 (whitespace stripped)", first.Code)
	}
	if first.UserName != "" {
		t.Errorf("flat without resident should have empty userName, got %q", first.UserName)
	}

	second, ok := byFlat["A-102"]
	if !ok {
		t.Fatal("no coupon for flat A-102")
	}
	if second.UserName != "Meera Joshi" {
		t.Errorf("userName = %q, want resident name", second.UserName)
	}
}

func TestIssue_BulkRequiresFlats(t *testing.T) {
	t.Parallel()

	fx := newCouponFixture(t)
	req := fx.issueRequest()
	req.GenerateForAllFlats = true
	req.Flats = []string{"  ", ""}

	if _, err := fx.svc.Issue(context.Background(), req); !errors.Is(err, ErrFlatsRequired) {
		t.Errorf("err = %v, want ErrFlatsRequired", err)
	}
}

func TestIssue_CollisionGetsSuffixedCode(t *testing.T) {
	t.Parallel()

	fx := newCouponFixture(t)
	if _, err := fx.svc.Issue(context.Background(), fx.issueRequest()); err != nil {
		t.Fatalf("first issue: %v", err)
	}

	req := fx.issueRequest()
	req.FlatNo = "B-201"
	req.UserName = "Ravi Nair"
	issued, err := fx.svc.Issue(context.Background(), req)
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}

	code := issued[0].Code
	if code == "DIWALI26" {
		t.Fatal("colliding code was reused verbatim")
	}
	if !strings.HasPrefix(code, "DIWALI26-") {
		t.Errorf("code = %q, want DIWALI26-<suffix>", code)
	}
}

func TestScanMobile_FirstScanRedeems(t *testing.T) {
	t.Parallel()

	fx := newCouponFixture(t)
	issued, err := fx.svc.Issue(context.Background(), fx.issueRequest())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	code := issued[0].Code

	snap, err := fx.svc.ScanMobile(context.Background(), code)
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if snap.FirstScan == nil || !*snap.FirstScan {
		t.Error("first scan should report firstScan=true")
	}
	if snap.Used != "Yes" || snap.Status != "used" || snap.Active != "No" {
		t.Errorf("snapshot = used:%s status:%s active:%s, want Yes/used/No", snap.Used, snap.Status, snap.Active)
	}
	if snap.Society != fx.society.Name || snap.Event != fx.event.Title {
		t.Errorf("snapshot society/event = %q/%q", snap.Society, snap.Event)
	}

	stored, err := fx.coupons.FindByID(context.Background(), issued[0].ID)
	if err != nil {
		t.Fatalf("find after scan: %v", err)
	}
	if !stored.Used || stored.Status != model.CouponStatusUsed {
		t.Errorf("redeem was not persisted: used=%v status=%s", stored.Used, stored.Status)
	}

	again, err := fx.svc.ScanMobile(context.Background(), code)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if again.FirstScan != nil {
		t.Error("repeat scan must omit firstScan")
	}
	if again.Used != "Yes" {
		t.Errorf("repeat scan used = %s, want Yes", again.Used)
	}
}

func TestScanMobile_ExpiredCouponIsPersisted(t *testing.T) {
	t.Parallel()

	fx := newCouponFixture(t)
	coupon := &model.Coupon{
		ID:         uuid.New(),
		SocietyID:  fx.society.ID,
		EventID:    fx.event.ID,
		FlatNo:     "A-101",
		UserName:   "Asha Rao",
		Code:       "STALE",
		ExpiryDate: pastDate(),
		AdminEmail: fx.society.AdminEmail,
		Status:     model.CouponStatusActive,
	}
	if err := fx.coupons.Create(context.Background(), coupon); err != nil {
		t.Fatalf("seed coupon: %v", err)
	}

	snap, err := fx.svc.ScanMobile(context.Background(), "STALE")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if snap.Status != "expired" || snap.Used != "No" {
		t.Errorf("snapshot = status:%s used:%s, want expired/No", snap.Status, snap.Used)
	}
	if snap.FirstScan != nil {
		t.Error("expired scan should not report firstScan")
	}

	stored, _ := fx.coupons.FindByID(context.Background(), coupon.ID)
	if stored.Status != model.CouponStatusExpired {
		t.Errorf("expired status was not persisted, got %s", stored.Status)
	}
	if stored.Used {
		t.Error("expiring a coupon must not mark it used")
	}
}

func TestScanMobile_UnknownCode(t *testing.T) {
	t.Parallel()

	fx := newCouponFixture(t)
	if _, err := fx.svc.ScanMobile(context.Background(), "NOPE"); !errors.Is(err, ErrCouponNotFound) {
		t.Errorf("err = %v, want ErrCouponNotFound", err)
	}
}

func TestScanManual_NeverRedeems(t *testing.T) {
	t.Parallel()

	fx := newCouponFixture(t)
	issued, err := fx.svc.Issue(context.Background(), fx.issueRequest())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	snap, err := fx.svc.ScanManual(context.Background(), issued[0].Code)
	if err != nil {
		t.Fatalf("manual scan: %v", err)
	}
	if snap.Status != "active" || snap.Used != "No" || snap.Active != "Yes" {
		t.Errorf("snapshot = status:%s used:%s active:%s, want active/No/Yes", snap.Status, snap.Used, snap.Active)
	}

	stored, _ := fx.coupons.FindByID(context.Background(), issued[0].ID)
	if stored.Used || stored.Status != model.CouponStatusActive {
		t.Errorf("manual scan wrote a redeem: used=%v status=%s", stored.Used, stored.Status)
	}
}

func TestScanManual_PersistsDiscoveredExpiry(t *testing.T) {
	t.Parallel()

	fx := newCouponFixture(t)
	coupon := &model.Coupon{
		ID:         uuid.New(),
		SocietyID:  fx.society.ID,
		EventID:    fx.event.ID,
		FlatNo:     "A-101",
		Code:       "OLD",
		ExpiryDate: pastDate(),
		AdminEmail: fx.society.AdminEmail,
		Status:     model.CouponStatusActive,
	}
	if err := fx.coupons.Create(context.Background(), coupon); err != nil {
		t.Fatalf("seed coupon: %v", err)
	}

	snap, err := fx.svc.ScanManual(context.Background(), "OLD")
	if err != nil {
		t.Fatalf("manual scan: %v", err)
	}
	if snap.Status != "expired" {
		t.Errorf("status = %s, want expired", snap.Status)
	}

	stored, _ := fx.coupons.FindByID(context.Background(), coupon.ID)
	if stored.Status != model.CouponStatusExpired {
		t.Errorf("expiry was not persisted, got %s", stored.Status)
	}
}

func TestUpdateCoupon_UsedNeverLooksActive(t *testing.T) {
	t.Parallel()

	fx := newCouponFixture(t)
	issued, err := fx.svc.Issue(context.Background(), fx.issueRequest())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	used := true
	updated, err := fx.svc.Update(context.Background(), issued[0].ID, CouponUpdateInput{Used: &used})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != model.CouponStatusUsed {
		t.Errorf("status = %s, want used after Used=true", updated.Status)
	}
}

func TestUpdateCoupon_RewritesCodeAndTargets(t *testing.T) {
	t.Parallel()

	fx := newCouponFixture(t)
	issued, err := fx.svc.Issue(context.Background(), fx.issueRequest())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	otherSociety := &model.Society{
		ID:         uuid.New(),
		Name:       "Blue Ridge",
		Location:   "Mumbai",
		AdminEmail: fx.society.AdminEmail,
	}
	if err := fx.societies.Create(context.Background(), otherSociety); err != nil {
		t.Fatalf("seed society: %v", err)
	}
	otherEvent := &model.Event{ID: uuid.New(), Title: "Holi Brunch", AdminEmail: fx.society.AdminEmail}
	if err := fx.events.Create(context.Background(), otherEvent); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	code := "NEWCODE"
	societyID := otherSociety.ID.String()
	eventID := otherEvent.ID.String()
	updated, err := fx.svc.Update(context.Background(), issued[0].ID, CouponUpdateInput{
		Code:      &code,
		SocietyID: &societyID,
		EventID:   &eventID,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Code != "NEWCODE" {
		t.Errorf("code = %q, want NEWCODE", updated.Code)
	}
	if updated.SocietyID != otherSociety.ID || updated.EventID != otherEvent.ID {
		t.Error("society/event retarget was not applied")
	}

	stored, err := fx.coupons.FindByID(context.Background(), issued[0].ID)
	if err != nil {
		t.Fatalf("find after update: %v", err)
	}
	if stored.Code != "NEWCODE" {
		t.Errorf("persisted code = %q, want NEWCODE", stored.Code)
	}
}

func TestUpdateCoupon_CodeCollision(t *testing.T) {
	t.Parallel()

	fx := newCouponFixture(t)
	first, err := fx.svc.Issue(context.Background(), fx.issueRequest())
	if err != nil {
		t.Fatalf("first issue: %v", err)
	}

	req := fx.issueRequest()
	req.Code = "OTHER"
	req.FlatNo = "A-102"
	second, err := fx.svc.Issue(context.Background(), req)
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}

	taken := first[0].Code
	if _, err := fx.svc.Update(context.Background(), second[0].ID, CouponUpdateInput{Code: &taken}); !errors.Is(err, ErrCouponCodeTaken) {
		t.Errorf("err = %v, want ErrCouponCodeTaken", err)
	}

	// Re-submitting the coupon's own code is not a collision.
	own := second[0].Code
	if _, err := fx.svc.Update(context.Background(), second[0].ID, CouponUpdateInput{Code: &own}); err != nil {
		t.Errorf("same-code update: %v", err)
	}
}

func TestUpdateCoupon_RejectsBadValues(t *testing.T) {
	t.Parallel()

	fx := newCouponFixture(t)
	issued, err := fx.svc.Issue(context.Background(), fx.issueRequest())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	badStatus := "redeemed"
	if _, err := fx.svc.Update(context.Background(), issued[0].ID, CouponUpdateInput{Status: &badStatus}); !errors.Is(err, ErrInvalidCouponInput) {
		t.Errorf("bad status: err = %v, want ErrInvalidCouponInput", err)
	}

	badExpiry := "next week"
	if _, err := fx.svc.Update(context.Background(), issued[0].ID, CouponUpdateInput{ExpiryDate: &badExpiry}); !errors.Is(err, ErrInvalidCouponInput) {
		t.Errorf("bad expiry: err = %v, want ErrInvalidCouponInput", err)
	}

	emptyCode := "  "
	if _, err := fx.svc.Update(context.Background(), issued[0].ID, CouponUpdateInput{Code: &emptyCode}); !errors.Is(err, ErrInvalidCouponInput) {
		t.Errorf("empty code: err = %v, want ErrInvalidCouponInput", err)
	}

	badSociety := "not-a-uuid"
	if _, err := fx.svc.Update(context.Background(), issued[0].ID, CouponUpdateInput{SocietyID: &badSociety}); !errors.Is(err, ErrInvalidCouponInput) {
		t.Errorf("bad society id: err = %v, want ErrInvalidCouponInput", err)
	}

	missingEvent := uuid.NewString()
	if _, err := fx.svc.Update(context.Background(), issued[0].ID, CouponUpdateInput{EventID: &missingEvent}); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("unknown event: err = %v, want ErrEventNotFound", err)
	}

	if _, err := fx.svc.Update(context.Background(), uuid.New(), CouponUpdateInput{}); !errors.Is(err, ErrCouponNotFound) {
		t.Errorf("missing coupon: err = %v, want ErrCouponNotFound", err)
	}
}
