package usecases

import (
	"context"
	"log"
	"unicode"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/entities"
	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/interfaces"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// AuthResult is returned by both register and login.
type AuthResult struct {
	Token              string
	CompanyID          int64
	Email              string
	SubscriptionStatus entities.SubscriptionStatus
	TrialDaysRemaining int
	AIChatsRemaining   int
}

type AuthUsecase struct {
	users         interfaces.UserStore
	companies     interfaces.CompanyStore
	tokens        *TokenService
	revocation    interfaces.RevocationStore
	subscriptions *SubscriptionUsecase
	currency      string

	// compared against when the email is unknown, so login latency does
	// not reveal whether an account exists
	dummyHash []byte
}

func NewAuthUsecase(users interfaces.UserStore, companies interfaces.CompanyStore, tokens *TokenService,
	revocation interfaces.RevocationStore, subscriptions *SubscriptionUsecase, currency string) *AuthUsecase {
	dummy, err := bcrypt.GenerateFromPassword([]byte("timing-equalizer"), bcryptCost)
	if err != nil {
		panic("bcrypt self-test failed: " + err.Error())
	}
	return &AuthUsecase{
		users:         users,
		companies:     companies,
		tokens:        tokens,
		revocation:    revocation,
		subscriptions: subscriptions,
		currency:      currency,
		dummyHash:     dummy,
	}
}

// ValidatePassword enforces the password policy: 8-128 chars with at least
// one lowercase letter, one uppercase letter, and one digit.
func ValidatePassword(password string) error {
	if len(password) < 8 || len(password) > 128 {
		return entities.ErrWeakPassword
	}
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !lower || !upper || !digit {
		return entities.ErrWeakPassword
	}
	return nil
}

// Register creates the user account and its default company in one
// transaction, then issues a token. New accounts start on the FREE tier;
// the trial is an explicit opt-in later.
func (uc *AuthUsecase) Register(ctx context.Context, email, password, companyName string) (*AuthResult, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, entities.ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Email:              email,
		PasswordHash:       string(hashed),
		Role:               "USER",
		SubscriptionStatus: entities.StatusFree,
	}
	company := &entities.Company{
		Name:     companyName,
		Currency: uc.currency,
	}
	if err := uc.users.CreateWithCompany(ctx, user, company); err != nil {
		return nil, err
	}
	log.Printf("registered new user %s, company '%s' (id=%d)", user.Email, company.Name, company.ID)

	return uc.buildResult(user, company.ID)
}

// Login verifies credentials and issues a token bound to the user's first
// owned company. Unknown email and wrong password return the same failure,
// and the bcrypt cost is paid either way.
func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		bcrypt.CompareHashAndPassword(uc.dummyHash, []byte(password))
		return nil, entities.ErrBadCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, entities.ErrBadCredentials
	}

	company, err := uc.companies.FindFirstByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		log.Printf("no company found for user %s", user.Email)
		return nil, entities.ErrInternal
	}

	return uc.buildResult(user, company.ID)
}

// Logout revokes the token for its remaining validity. Malformed tokens
// silently succeed, and a revocation store outage must not block logout.
func (uc *AuthUsecase) Logout(ctx context.Context, token string) {
	remaining := uc.tokens.RemainingTTL(token)
	if remaining > 0 {
		uc.revocation.Revoke(ctx, token, remaining)
	}
}

func (uc *AuthUsecase) buildResult(user *entities.User, companyID int64) (*AuthResult, error) {
	token, err := uc.tokens.Issue(user.Email, companyID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:              token,
		CompanyID:          companyID,
		Email:              user.Email,
		SubscriptionStatus: user.SubscriptionStatus,
		TrialDaysRemaining: uc.subscriptions.TrialDaysRemaining(user),
		AIChatsRemaining:   uc.subscriptions.AIChatsRemaining(user),
	}, nil
}
