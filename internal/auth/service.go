package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mailer is the slice of the email service the auth flows need.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type AuthService struct {
	config *AuthConfig
	mailer Mailer
}

type UserService struct {
	repo        *UserRepository
	authService *AuthService
}

func NewAuthService(config *AuthConfig, mailer Mailer) *AuthService {
	return &AuthService{config: config, mailer: mailer}
}

func NewUserService(repo *UserRepository, authService *AuthService) *UserService {
	return &UserService{repo: repo, authService: authService}
}

func (s *UserService) RegisterUser(ctx context.Context, req RegisterRequest) error {
	if req.Role != "admin" && req.Role != "staff" {
		return errors.New("role must be admin or staff")
	}
	if req.Role == "staff" && req.SchoolID == "" {
		return errors.New("staff accounts require a school")
	}

	existing, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.New("Email already registered")
	}

	hashPassword, err := HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := &User{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashPassword,
		Role:         req.Role,
		SchoolID:     req.SchoolID,
		Verified:     false,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return err
	}

	token, _ := GenerateJWT(s.authService.config.JWTKey, user.Name, user.Email, user.Role, user.SchoolID, time.Hour*24)
	return s.authService.SendVerificationEmail(user.Email, token)
}

func (s *UserService) AuthenticateUser(ctx context.Context, cred Credential) (string, error) {
	user, err := s.repo.FindByEmail(ctx, cred.Email)
	if err != nil || user == nil || !CheckPasswordHash(cred.Password, user.PasswordHash) {
		return "", errors.New("Invalid Credentials")
	}
	if !user.Verified {
		return "", errors.New("Email not verified")
	}

	token, err := GenerateJWT(s.authService.config.JWTKey, user.Name, user.Email, user.Role, user.SchoolID, time.Hour*24)
	if err != nil {
		return "", errors.New("Token not generated")
	}
	return token, nil
}

func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := ValidateJWT(s.authService.config.JWTKey, token)
	if err != nil {
		return errors.New("Invalid token")
	}
	user, err := s.repo.FindByEmail(ctx, claims.Email)
	if err != nil || user == nil {
		return errors.New("User not found")
	}
	user.Verified = true
	return s.repo.UpdateUser(ctx, user)
}

func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil || user == nil {
		return errors.New("User not found")
	}
	resetToken, _ := GenerateJWT(s.authService.config.JWTKey, user.Name, user.Email, user.Role, user.SchoolID, time.Minute*15)
	user.ResetToken = resetToken
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return err
	}

	if err := s.authService.SendResetPasswordEmail(email, resetToken); err != nil {
		log.Println("Email sending error:", err)
		return errors.New("Failed to send reset password email")
	}
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := ValidateJWT(s.authService.config.JWTKey, token)
	if err != nil {
		return errors.New("Invalid Token")
	}

	user, err := s.repo.FindByEmail(ctx, claims.Email)
	if err != nil || user == nil {
		return errors.New("User not found")
	}
	hashPassword, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashPassword
	user.ResetToken = ""
	return s.repo.UpdateUser(ctx, user)
}

func (a *AuthService) SendVerificationEmail(email, token string) error {
	subject := "Email Verification"
	body := fmt.Sprintf("Click the link to verify your email: %s/verify-email?token=%s", frontendBaseURL(), token)
	return a.mailer.SendEmail(email, subject, body)
}

func (a *AuthService) SendResetPasswordEmail(email, token string) error {
	subject := "Password Reset"
	body := fmt.Sprintf("Click the link to reset your password: %s/reset-password?token=%s", frontendBaseURL(), token)
	return a.mailer.SendEmail(email, subject, body)
}

func frontendBaseURL() string {
	if url := os.Getenv("FRONTEND_BASE_URL"); url != "" {
		return url
	}
	return "http://localhost:5173"
}
