package service

import (
	"crypto/subtle"
	"fmt"

	"github.com/boddenberg/office-admin-go/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ============================================================
// Password storage
// ============================================================

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// checkPassword compares against a bcrypt hash. Rows holding a clear-text
// password only match when AllowPlaintextPasswords is set.
func (s *AuthService) checkPassword(u *domain.User, password string) bool {
	if isBcryptHash(u.Password) {
		return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
	}

	if !s.cfg.AllowPlaintextPasswords {
		s.logger.Warn("login: stored password is not a bcrypt hash", zap.String("user_id", u.ID))
		return false
	}

	ok := subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) == 1
	if ok {
		s.logger.Warn("login: accepted plaintext password, rehash with `users create`", zap.String("user_id", u.ID))
	}
	return ok
}

func isBcryptHash(stored string) bool {
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}
