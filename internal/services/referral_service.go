package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"investment-service/internal/config"
	"investment-service/internal/ladder"
	"investment-service/internal/models"
)

// ReferralService owns the sponsor tree: edges, ancestor walks, bounded
// downline queries and the qualifying volume that drives rank.
type ReferralService struct {
	DB         *gorm.DB
	Ladder     *ladder.Ladder
	Config     config.ReferralConfig
	Commission config.CommissionConfig
}

func NewReferralService(db *gorm.DB, cfg config.ReferralConfig, commission config.CommissionConfig) *ReferralService {
	return &ReferralService{DB: db, Ladder: commission.Ladder, Config: cfg, Commission: commission}
}

// AncestorsOf walks parent pointers upward from userID, nearest first, and
// stops at the root or after maxDepth ancestors. A revisited node or a parent
// pointer to a missing user is reported as an IntegrityError.
func (s *ReferralService) AncestorsOf(tx *gorm.DB, userID uint, maxDepth int) ([]models.User, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		return nil, notFoundOr("load user", fmt.Sprintf("user %d", userID), err)
	}

	visited := map[uint]bool{user.ID: true}
	ancestors := make([]models.User, 0, min(maxDepth, 16))
	next := user.ParentID
	for next != nil && len(ancestors) < maxDepth {
		if visited[*next] {
			return nil, &IntegrityError{UserID: *next, Reason: "cycle in referral chain"}
		}
		visited[*next] = true

		var parent models.User
		if err := tx.First(&parent, *next).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &IntegrityError{UserID: *next, Reason: "parent does not exist"}
			}
			return nil, asStorage("load ancestor", err)
		}
		ancestors = append(ancestors, parent)
		next = parent.ParentID
	}
	return ancestors, nil
}

// RegisterReferral attaches newUserID under referrerID. The edge is written
// once; a user that already has a sponsor is rejected.
func (s *ReferralService) RegisterReferral(tx *gorm.DB, referrerID, newUserID uint) (models.Referral, error) {
	var edge models.Referral
	if referrerID == 0 || referrerID == newUserID {
		return edge, fmt.Errorf("%w: a user cannot refer themselves", ErrInvalidReferral)
	}

	var referrer models.User
	if err := tx.First(&referrer, referrerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return edge, fmt.Errorf("%w: sponsor does not exist", ErrInvalidReferral)
		}
		return edge, asStorage("load referrer", err)
	}
	if s.Config.RequireActiveSponsor && !referrer.IsActive() {
		return edge, fmt.Errorf("%w: sponsor account is %s", ErrInvalidReferral, referrer.Status)
	}

	var newUser models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&newUser, newUserID).Error; err != nil {
		return edge, notFoundOr("load referred user", fmt.Sprintf("user %d", newUserID), err)
	}
	if newUser.ParentID != nil {
		return edge, fmt.Errorf("%w: user already has a sponsor", ErrInvalidReferral)
	}

	// The sponsor must not sit below the new user. Only possible if the user
	// was created outside registration, but the walk is cheap.
	chain, err := s.AncestorsOf(tx, referrerID, maxChainWalk)
	if err != nil {
		return edge, err
	}
	for _, a := range chain {
		if a.ID == newUserID {
			return edge, fmt.Errorf("%w: sponsor is in the user's downline", ErrInvalidReferral)
		}
	}

	tier, err := s.TierOf(tx, referrer)
	if err != nil {
		return edge, err
	}

	edge = models.Referral{
		ReferrerID:     referrer.ID,
		ReferredID:     newUser.ID,
		Level:          1,
		CommissionRate: tier.Rate,
	}
	if err := tx.Create(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return edge, fmt.Errorf("%w: user already has a sponsor", ErrInvalidReferral)
		}
		return edge, asStorage("insert referral", err)
	}

	res := tx.Model(&models.User{}).Where("id = ? AND parent_id IS NULL", newUser.ID).Updates(map[string]interface{}{
		"parent_id": referrer.ID,
		"level":     referrer.Level + 1,
	})
	if res.Error != nil {
		return edge, asStorage("set parent", res.Error)
	}
	if res.RowsAffected == 0 {
		return edge, fmt.Errorf("%w: user already has a sponsor", ErrInvalidReferral)
	}
	return edge, nil
}

// maxChainWalk bounds full-chain walks used for validation.
const maxChainWalk = 10000

// ResolveReferralCode maps an opaque sponsor code to its user.
func (s *ReferralService) ResolveReferralCode(tx *gorm.DB, code string) (models.User, error) {
	var user models.User
	if code == "" {
		return user, fmt.Errorf("%w: referral code is required", ErrInvalidReferral)
	}
	if err := tx.Where("referral_code = ?", code).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, fmt.Errorf("%w: unknown referral code", ErrInvalidReferral)
		}
		return user, asStorage("resolve referral code", err)
	}
	return user, nil
}

// QualifyingVolume sums the user's active and matured principal and, under
// the downline policy, that of the bounded downline.
func (s *ReferralService) QualifyingVolume(tx *gorm.DB, userID uint) (decimal.Decimal, error) {
	ids := []uint{userID}
	if s.Commission.Volume == config.VolumeDownline {
		downline, err := s.downlineIDs(tx, userID, s.Commission.DownlineDepth)
		if err != nil {
			return decimal.Zero, err
		}
		ids = append(ids, downline...)
	}

	total, err := sumColumn(tx.Model(&models.Investment{}).
		Where("user_id IN ? AND status IN ?", ids, []string{models.InvestmentActive, models.InvestmentMatured}), "amount")
	if err != nil {
		return decimal.Zero, asStorage("sum qualifying volume", err)
	}
	return total, nil
}

// TierOf is the user's current effective tier.
func (s *ReferralService) TierOf(tx *gorm.DB, user models.User) (ladder.Tier, error) {
	volume, err := s.QualifyingVolume(tx, user.ID)
	if err != nil {
		return ladder.Tier{}, err
	}
	return s.Ladder.EffectiveTier(volume, user.ManualTier), nil
}

// downlineIDs returns descendants up to depth levels below userID, breadth
// first, never revisiting a node.
func (s *ReferralService) downlineIDs(tx *gorm.DB, userID uint, depth int) ([]uint, error) {
	visited := map[uint]bool{userID: true}
	var out []uint
	frontier := []uint{userID}
	for level := 0; level < depth && len(frontier) > 0; level++ {
		var children []uint
		if err := tx.Model(&models.User{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
			return nil, asStorage("load downline", err)
		}
		frontier = frontier[:0]
		for _, id := range children {
			if visited[id] {
				continue
			}
			visited[id] = true
			out = append(out, id)
			frontier = append(frontier, id)
		}
	}
	return out, nil
}

type TreeNode struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Status    string      `json:"status"`
	Depth     int         `json:"depth"`
	CreatedAt string      `json:"created_at"`
	Children  []*TreeNode `json:"children"`
}

// Tree returns the downline of rootID as a nested structure, at most
// maxDepth levels deep. Non-admins may only view their own tree.
func (s *ReferralService) Tree(ctx context.Context, actor Actor, rootID uint, maxDepth int) (*TreeNode, error) {
	if err := requireAccess(actor, rootID); err != nil {
		return nil, err
	}
	if maxDepth <= 0 || maxDepth > s.Config.TreeDepth && !actor.IsAdmin() {
		maxDepth = s.Config.TreeDepth
	}
	db := s.DB.WithContext(ctx)

	var root models.User
	if err := db.First(&root, rootID).Error; err != nil {
		return nil, notFoundOr("load tree root", fmt.Sprintf("user %d", rootID), err)
	}

	node := func(u models.User, depth int) *TreeNode {
		return &TreeNode{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Status:    u.Status,
			Depth:     depth,
			CreatedAt: u.CreatedAt.Format("2006-01-02"),
			Children:  []*TreeNode{},
		}
	}

	top := node(root, 0)
	nodes := map[uint]*TreeNode{root.ID: top}
	frontier := []uint{root.ID}
	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var children []models.User
		if err := db.Where("parent_id IN ?", frontier).Order("id").Find(&children).Error; err != nil {
			return nil, asStorage("load tree level", err)
		}
		frontier = frontier[:0]
		for _, c := range children {
			if _, seen := nodes[c.ID]; seen {
				continue
			}
			n := node(c, depth)
			nodes[c.ID] = n
			parent := nodes[*c.ParentID]
			parent.Children = append(parent.Children, n)
			frontier = append(frontier, c.ID)
		}
	}
	return top, nil
}

func (s *ReferralService) DirectReferrals(ctx context.Context, actor Actor, userID uint) ([]models.User, error) {
	if err := requireAccess(actor, userID); err != nil {
		return nil, err
	}
	var users []models.User
	if err := s.DB.WithContext(ctx).Where("parent_id = ?", userID).Order("id DESC").Find(&users).Error; err != nil {
		return nil, asStorage("list referrals", err)
	}
	return users, nil
}

func (s *ReferralService) ReferralCount(tx *gorm.DB, userID uint) (int64, error) {
	var count int64
	err := tx.Model(&models.Referral{}).Where("referrer_id = ?", userID).Count(&count).Error
	return count, asStorage("count referrals", err)
}

type TierInfo struct {
	Tier             ladder.Tier     `json:"tier"`
	QualifyingVolume decimal.Decimal `json:"qualifying_volume"`
	NextTier         *ladder.Tier    `json:"next_tier,omitempty"`
	NeededForNext    decimal.Decimal `json:"needed_for_next"`
}

// CurrentTier reports the user's tier and the distance to the next
// automatic tier.
func (s *ReferralService) CurrentTier(ctx context.Context, actor Actor, userID uint) (TierInfo, error) {
	var info TierInfo
	if err := requireAccess(actor, userID); err != nil {
		return info, err
	}
	db := s.DB.WithContext(ctx)

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return info, notFoundOr("load user", fmt.Sprintf("user %d", userID), err)
	}
	volume, err := s.QualifyingVolume(db, userID)
	if err != nil {
		return info, err
	}
	info.QualifyingVolume = volume
	info.Tier = s.Ladder.EffectiveTier(volume, user.ManualTier)

	for _, t := range s.Ladder.Tiers() {
		if t.Manual || t.Index <= info.Tier.Index {
			continue
		}
		next := t
		info.NextTier = &next
		info.NeededForNext = decimal.Max(t.MinAmount.Sub(volume), decimal.Zero)
		break
	}
	return info, nil
}
