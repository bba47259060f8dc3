package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/terraincognita07/careline/internal/models"
	"github.com/terraincognita07/careline/internal/security"
)

const (
	inviteCodePrefix     = "CL"
	inviteCodeAttempts   = 5
	MaxFamilyNameLength  = 50
	MaxMessageLength     = 500
	activeMessagesToShow = 3
)

var (
	ErrInvalidFamilyName = errors.New("invalid family name")
	ErrInviteCodeFailed  = errors.New("generate invite code failed")
	ErrInvalidMessage    = errors.New("invalid message")
)

type FamilyRepository interface {
	FindByID(familyID uint) (models.Family, error)
	FindByInviteCode(code string) (models.Family, bool, error)
	InviteCodeExists(code string) (bool, error)
	FindMembershipByUser(userID uint) (models.FamilyMember, bool, error)
	CreateWithMember(family *models.Family, role string, joinedAt time.Time) (models.FamilyMember, error)
	AddMember(member *models.FamilyMember) error
	CountMembersWithRole(familyID uint, role string) (int64, error)
	ListMembers(familyID uint) ([]models.FamilyMemberSummary, error)
}

// FamilyOverview is a family as seen by one of its members.
type FamilyOverview struct {
	ID         uint                         `json:"id"`
	Name       string                       `json:"name"`
	InviteCode string                       `json:"invite_code"`
	MyRole     string                       `json:"my_role"`
	Members    []models.FamilyMemberSummary `json:"members"`
}

type FamilyService struct {
	families FamilyRepository
	clock    Clock
}

func NewFamilyService(families FamilyRepository, clock Clock) *FamilyService {
	return &FamilyService{families: families, clock: clock}
}

// GenerateInviteCode returns a code shaped CL-XXXX-XXXX with hex digits.
func GenerateInviteCode() (string, error) {
	return security.GroupedCode(inviteCodePrefix, security.HexAlphabet, 4, 4)
}

// Membership returns the user's family membership or ErrNoFamily.
func (service *FamilyService) Membership(userID uint) (models.FamilyMember, error) {
	member, found, err := service.families.FindMembershipByUser(userID)
	if err != nil {
		return models.FamilyMember{}, fmt.Errorf("load membership: %w", err)
	}
	if !found {
		return models.FamilyMember{}, ErrNoFamily
	}
	return member, nil
}

func (service *FamilyService) Create(userID uint, name string, role string) (FamilyOverview, error) {
	if role == "" {
		role = models.RoleCaregiver
	}
	if !models.IsValidRole(role) {
		return FamilyOverview{}, ErrInvalidRole
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = models.DefaultFamilyName
	}
	if utf8.RuneCountInString(name) > MaxFamilyNameLength {
		return FamilyOverview{}, ErrInvalidFamilyName
	}
	if err := service.ensureNoMembership(userID); err != nil {
		return FamilyOverview{}, err
	}

	code, err := service.uniqueInviteCode()
	if err != nil {
		return FamilyOverview{}, err
	}

	family := models.Family{Name: name, InviteCode: code, CreatedBy: userID}
	if _, err := service.families.CreateWithMember(&family, role, service.clock.Now()); err != nil {
		return FamilyOverview{}, fmt.Errorf("create family: %w", err)
	}
	return service.Overview(userID)
}

// Join adds the user to the family owning code. A family has one patient.
func (service *FamilyService) Join(userID uint, code string, role string) (FamilyOverview, error) {
	if !models.IsValidRole(role) {
		return FamilyOverview{}, ErrInvalidRole
	}
	if err := service.ensureNoMembership(userID); err != nil {
		return FamilyOverview{}, err
	}

	family, found, err := service.families.FindByInviteCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return FamilyOverview{}, fmt.Errorf("load family by invite code: %w", err)
	}
	if !found {
		return FamilyOverview{}, ErrInvalidInviteCode
	}

	if role == models.RolePatient {
		patients, err := service.families.CountMembersWithRole(family.ID, models.RolePatient)
		if err != nil {
			return FamilyOverview{}, fmt.Errorf("count patients: %w", err)
		}
		if patients > 0 {
			return FamilyOverview{}, ErrPatientExists
		}
	}

	member := models.FamilyMember{
		UserID:   userID,
		FamilyID: family.ID,
		Role:     role,
		JoinedAt: service.clock.Now(),
	}
	if err := service.families.AddMember(&member); err != nil {
		return FamilyOverview{}, fmt.Errorf("add member: %w", err)
	}
	return service.Overview(userID)
}

func (service *FamilyService) Overview(userID uint) (FamilyOverview, error) {
	member, err := service.Membership(userID)
	if err != nil {
		return FamilyOverview{}, err
	}
	family, err := service.families.FindByID(member.FamilyID)
	if err != nil {
		return FamilyOverview{}, fmt.Errorf("load family: %w", err)
	}
	members, err := service.families.ListMembers(family.ID)
	if err != nil {
		return FamilyOverview{}, fmt.Errorf("list members: %w", err)
	}
	return FamilyOverview{
		ID:         family.ID,
		Name:       family.Name,
		InviteCode: family.InviteCode,
		MyRole:     member.Role,
		Members:    members,
	}, nil
}

func (service *FamilyService) ensureNoMembership(userID uint) error {
	_, found, err := service.families.FindMembershipByUser(userID)
	if err != nil {
		return fmt.Errorf("load membership: %w", err)
	}
	if found {
		return ErrAlreadyInFamily
	}
	return nil
}

func (service *FamilyService) uniqueInviteCode() (string, error) {
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := GenerateInviteCode()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInviteCodeFailed, err)
		}
		exists, err := service.families.InviteCodeExists(code)
		if err != nil {
			return "", fmt.Errorf("check invite code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrInviteCodeFailed
}
