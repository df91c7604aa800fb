package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"societyhub/internal/metrics"
	"societyhub/internal/model"
	"societyhub/internal/repository"
	"societyhub/pkg/qrimg"
)

var (
	ErrCouponNotFound       = errors.New("coupon not found")
	ErrSocietyEventRequired = errors.New("society and event are required")
	ErrFlatsRequired        = errors.New("no flats to generate coupons for")
	ErrInvalidCouponInput   = errors.New("code, expiryDate and adminEmail are required")
	ErrCouponCodeTaken      = errors.New("coupon code already in use")
)

// maxCodeAttempts bounds the retry loop when a generated code collides
// with an existing one.
const maxCodeAttempts = 5

const couponDateLayout = "2006-01-02"

type IssueCouponRequest struct {
	SocietyID           string   `json:"society"`
	EventID             string   `json:"event"`
	FlatNo              string   `json:"flatNo"`
	UserName            string   `json:"userName"`
	Code                string   `json:"code"`
	ExpiryDate          string   `json:"expiryDate"`
	GenerateForAllFlats bool     `json:"generateForAllFlats"`
	Flats               []string `json:"flats"`
	AdminEmail          string   `json:"adminEmail"`
}

type CouponUpdateInput struct {
	SocietyID  *string `json:"society"`
	EventID    *string `json:"event"`
	FlatNo     *string `json:"flatNo"`
	UserName   *string `json:"userName"`
	Code       *string `json:"code"`
	ExpiryDate *string `json:"expiryDate"`
	Status     *string `json:"status"`
	Used       *bool   `json:"used"`
}

// CouponSnapshot is the shape both scan endpoints return. Used and
// Active are "Yes"/"No" strings for direct display at the gate.
type CouponSnapshot struct {
	QRCodeID   uuid.UUID `json:"qrCodeId"`
	Code       string    `json:"code"`
	UserName   string    `json:"userName"`
	FlatNo     string    `json:"flatNo"`
	Society    string    `json:"society"`
	Event      string    `json:"event"`
	ExpiryDate string    `json:"expiryDate"`
	Status     string    `json:"status"`
	Used       string    `json:"used"`
	Active     string    `json:"active"`
	FirstScan  *bool     `json:"firstScan,omitempty"`
}

// qrPayload is what gets encoded into the coupon's QR image. It is
// written once at issuance and never regenerated.
type qrPayload struct {
	CouponID uuid.UUID `json:"couponId"`
	Code     string    `json:"code"`
	FlatNo   string    `json:"flatNo"`
	UserName string    `json:"userName"`
	Status   string    `json:"status"`
}

type CouponService struct {
	couponRepo   repository.CouponRepository
	societyRepo  repository.SocietyRepository
	eventRepo    repository.EventRepository
	residentRepo repository.ResidentRepository
	rnd          *rand.Rand
	logger       *zap.Logger
}

func NewCouponService(
	couponRepo repository.CouponRepository,
	societyRepo repository.SocietyRepository,
	eventRepo repository.EventRepository,
	residentRepo repository.ResidentRepository,
	logger *zap.Logger,
) *CouponService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CouponService{
		couponRepo:   couponRepo,
		societyRepo:  societyRepo,
		eventRepo:    eventRepo,
		residentRepo: residentRepo,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:       logger,
	}
}

// Issue creates one coupon, or one per flat when GenerateForAllFlats
// is set. Codes are unique across all coupons; on collision a numeric
// suffix is appended and the insert retried.
func (s *CouponService) Issue(ctx context.Context, req IssueCouponRequest) ([]*model.Coupon, error) {
	societyID, err := uuid.Parse(strings.TrimSpace(req.SocietyID))
	if err != nil {
		return nil, ErrSocietyEventRequired
	}
	eventID, err := uuid.Parse(strings.TrimSpace(req.EventID))
	if err != nil {
		return nil, ErrSocietyEventRequired
	}

	code := strings.TrimSpace(req.Code)
	expiry := strings.TrimSpace(req.ExpiryDate)
	adminEmail := strings.TrimSpace(req.AdminEmail)
	if code == "" || expiry == "" || adminEmail == "" {
		return nil, ErrInvalidCouponInput
	}
	if _, err := time.Parse(couponDateLayout, expiry); err != nil {
		return nil, ErrInvalidCouponInput
	}

	if _, err := s.societyRepo.FindByID(ctx, societyID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSocietyNotFound
		}
		return nil, err
	}
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if !req.GenerateForAllFlats {
		flatNo := strings.TrimSpace(req.FlatNo)
		// Holder name may be blank; the flat is the real subject.
		userName := strings.TrimSpace(req.UserName)
		if flatNo == "" {
			return nil, ErrInvalidCouponInput
		}

		coupon, err := s.insertCoupon(ctx, societyID, eventID, flatNo, userName, code, expiry, adminEmail)
		if err != nil {
			return nil, err
		}
		metrics.AddCouponsIssued(1)
		return []*model.Coupon{coupon}, nil
	}

	flats := normalizeFlats(req.Flats)
	if len(flats) == 0 {
		return nil, ErrFlatsRequired
	}

	created := make([]*model.Coupon, 0, len(flats))
	for _, flat := range flats {
		userName := ""
		if resident, err := s.residentRepo.FindBySocietyFlat(ctx, societyID, flat); err == nil {
			userName = resident.Name
		} else if !errors.Is(err, repository.ErrNotFound) {
			return created, err
		}

		flatCode := code + "-" + strings.Join(strings.Fields(flat), "")
		coupon, err := s.insertCoupon(ctx, societyID, eventID, flat, userName, flatCode, expiry, adminEmail)
		if err != nil {
			return created, err
		}
		created = append(created, coupon)
	}

	metrics.AddCouponsIssued(len(created))
	return created, nil
}

// insertCoupon encodes the QR image before the insert so the stored
// payload always matches the persisted code, then retries with a fresh
// suffix when the code already exists.
func (s *CouponService) insertCoupon(ctx context.Context, societyID, eventID uuid.UUID, flatNo, userName, baseCode, expiry, adminEmail string) (*model.Coupon, error) {
	code := baseCode
	if exists, err := s.couponRepo.CodeExists(ctx, code); err != nil {
		return nil, err
	} else if exists {
		code = s.suffixCode(baseCode)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		coupon := &model.Coupon{
			ID:         uuid.New(),
			SocietyID:  societyID,
			FlatNo:     flatNo,
			UserName:   userName,
			Code:       code,
			ExpiryDate: expiry,
			EventID:    eventID,
			AdminEmail: adminEmail,
			Status:     model.CouponStatusActive,
			Used:       false,
		}

		payload, err := json.Marshal(qrPayload{
			CouponID: coupon.ID,
			Code:     coupon.Code,
			FlatNo:   coupon.FlatNo,
			UserName: coupon.UserName,
			Status:   string(coupon.Status),
		})
		if err != nil {
			return nil, err
		}
		coupon.QRCode, err = qrimg.DataURL(payload)
		if err != nil {
			return nil, err
		}

		err = s.couponRepo.Create(ctx, coupon)
		if err == nil {
			return coupon, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}

		// Concurrent issuance claimed the code between the existence
		// check and the insert.
		code = s.suffixCode(baseCode)
	}

	return nil, fmt.Errorf("could not allocate a unique coupon code for %q", baseCode)
}

func (s *CouponService) suffixCode(base string) string {
	return fmt.Sprintf("%s-%d", base, s.rnd.Intn(10000))
}

func (s *CouponService) List(ctx context.Context, scope repository.TenantScope) ([]*model.CouponDetail, error) {
	return s.couponRepo.List(ctx, scope)
}

func (s *CouponService) Count(ctx context.Context, scope repository.TenantScope) (int64, error) {
	return s.couponRepo.Count(ctx, scope)
}

func (s *CouponService) Update(ctx context.Context, id uuid.UUID, in CouponUpdateInput) (*model.Coupon, error) {
	coupon, err := s.couponRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	if in.SocietyID != nil {
		societyID, err := uuid.Parse(strings.TrimSpace(*in.SocietyID))
		if err != nil {
			return nil, ErrInvalidCouponInput
		}
		if _, err := s.societyRepo.FindByID(ctx, societyID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrSocietyNotFound
			}
			return nil, err
		}
		coupon.SocietyID = societyID
	}
	if in.EventID != nil {
		eventID, err := uuid.Parse(strings.TrimSpace(*in.EventID))
		if err != nil {
			return nil, ErrInvalidCouponInput
		}
		if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrEventNotFound
			}
			return nil, err
		}
		coupon.EventID = eventID
	}
	if in.FlatNo != nil {
		coupon.FlatNo = strings.TrimSpace(*in.FlatNo)
	}
	if in.UserName != nil {
		coupon.UserName = strings.TrimSpace(*in.UserName)
	}
	if in.Code != nil {
		code := strings.TrimSpace(*in.Code)
		if code == "" {
			return nil, ErrInvalidCouponInput
		}
		if code != coupon.Code {
			exists, err := s.couponRepo.CodeExists(ctx, code)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrCouponCodeTaken
			}
			coupon.Code = code
		}
	}
	if in.ExpiryDate != nil {
		expiry := strings.TrimSpace(*in.ExpiryDate)
		if _, err := time.Parse(couponDateLayout, expiry); err != nil {
			return nil, ErrInvalidCouponInput
		}
		coupon.ExpiryDate = expiry
	}
	if in.Status != nil {
		switch status := model.CouponStatus(strings.TrimSpace(*in.Status)); status {
		case model.CouponStatusActive, model.CouponStatusUsed, model.CouponStatusExpired:
			coupon.Status = status
		default:
			return nil, ErrInvalidCouponInput
		}
	}
	if in.Used != nil {
		coupon.Used = *in.Used
	}
	// Used=true must never leave the coupon looking redeemable.
	if coupon.Used && coupon.Status == model.CouponStatusActive {
		coupon.Status = model.CouponStatusUsed
	}

	if err := s.couponRepo.Update(ctx, coupon); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCouponNotFound
		}
		// The existence check above can lose a race to a concurrent
		// issuance claiming the same code.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCouponCodeTaken
		}
		return nil, err
	}
	return coupon, nil
}

func (s *CouponService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.couponRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCouponNotFound
		}
		return err
	}
	return nil
}

// ScanMobile is the redeeming scan. The first scan of a live coupon
// marks it used; later scans report it without further writes.
func (s *CouponService) ScanMobile(ctx context.Context, code string) (*CouponSnapshot, error) {
	detail, err := s.couponRepo.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.IncCouponScan("mobile", "not_found")
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	if couponOverdue(detail.ExpiryDate) {
		if detail.Status != model.CouponStatusExpired {
			if err := s.couponRepo.SetScanState(ctx, detail.ID, detail.Used, model.CouponStatusExpired); err != nil {
				return nil, err
			}
			detail.Status = model.CouponStatusExpired
		}
		metrics.IncCouponScan("mobile", "expired")
		return snapshotOf(detail, nil), nil
	}

	if !detail.Used {
		if err := s.couponRepo.SetScanState(ctx, detail.ID, true, model.CouponStatusUsed); err != nil {
			return nil, err
		}
		detail.Used = true
		detail.Status = model.CouponStatusUsed
		metrics.IncCouponScan("mobile", "first_scan")
		first := true
		return snapshotOf(detail, &first), nil
	}

	// Repeat scans omit firstScan entirely; only a redeem reports it.
	metrics.IncCouponScan("mobile", "already_used")
	return snapshotOf(detail, nil), nil
}

// ScanManual is the verification scan used at the desk. It never
// redeems; the only write it performs is persisting a discovered
// expiry.
func (s *CouponService) ScanManual(ctx context.Context, code string) (*CouponSnapshot, error) {
	detail, err := s.couponRepo.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.IncCouponScan("manual", "not_found")
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	if couponOverdue(detail.ExpiryDate) && detail.Status != model.CouponStatusExpired {
		if err := s.couponRepo.SetScanState(ctx, detail.ID, detail.Used, model.CouponStatusExpired); err != nil {
			return nil, err
		}
		detail.Status = model.CouponStatusExpired
	}

	metrics.IncCouponScan("manual", string(detail.Status))
	return snapshotOf(detail, nil), nil
}

// couponOverdue compares calendar dates lexically; YYYY-MM-DD strings
// order the same way their dates do.
func couponOverdue(expiry string) bool {
	return expiry < time.Now().UTC().Format(couponDateLayout)
}

func snapshotOf(detail *model.CouponDetail, firstScan *bool) *CouponSnapshot {
	snapshot := &CouponSnapshot{
		QRCodeID:   detail.ID,
		Code:       detail.Code,
		UserName:   detail.UserName,
		FlatNo:     detail.FlatNo,
		Society:    detail.SocietyName,
		Event:      detail.EventTitle,
		ExpiryDate: detail.ExpiryDate,
		Status:     string(detail.Status),
		Used:       yesNo(detail.Used),
		Active:     yesNo(detail.Status == model.CouponStatusActive),
		FirstScan:  firstScan,
	}
	return snapshot
}

func yesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

func normalizeFlats(flats []string) []string {
	out := make([]string, 0, len(flats))
	seen := make(map[string]struct{}, len(flats))
	for _, flat := range flats {
		flat = strings.TrimSpace(flat)
		if flat == "" {
			continue
		}
		if _, dup := seen[flat]; dup {
			continue
		}
		seen[flat] = struct{}{}
		out = append(out, flat)
	}
	return out
}
