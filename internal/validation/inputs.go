package validation

import "strings"

// RegisterInput is the body of POST /api/user.
type RegisterInput struct {
	Name           string `json:"name" validate:"required,max=50,personname"`
	Email          string `json:"email" validate:"required,max=255,email"`
	Password       string `json:"password" validate:"required,min=6,bcryptlen"`
	PasswordRepeat string `json:"passwordRepeat" validate:"required,eqfield=Password"`
	Avatar         string `json:"avatar" validate:"required,max=255,image"`
}

// LoginInput is the body of POST /api/user/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// TokenInput is the body of the refresh and logout calls.
type TokenInput struct {
	Token string `json:"token" validate:"required"`
}

// OfferInput is the body of offer create and update.
type OfferInput struct {
	Title       string   `json:"title" validate:"required,min=10,max=100"`
	Description string   `json:"description" validate:"required,min=50,max=1000"`
	Type        string   `json:"type" validate:"required,oneof=buy offer"`
	Sum         uint32   `json:"sum" validate:"min=100"`
	Picture     string   `json:"picture" validate:"omitempty,max=255,image"`
	Categories  []uint64 `json:"categories" validate:"required,min=1,dive,gt=0"`
}

// CommentInput is the body of POST /api/offer/:offerId/comments.
type CommentInput struct {
	Text string `json:"text" validate:"required,min=20,max=1000"`
}

// CategoryInput is the body of POST /api/category.
type CategoryInput struct {
	Name string `json:"name" validate:"required,min=5,max=30"`
}

// Normalizer is implemented by inputs that trim themselves before
// validation.
type Normalizer interface {
	Normalize()
}

func (in *RegisterInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Avatar = strings.TrimSpace(in.Avatar)
}

func (in *LoginInput) Normalize() { in.Email = strings.TrimSpace(in.Email) }

func (in *TokenInput) Normalize() { in.Token = strings.TrimSpace(in.Token) }

func (in *OfferInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Picture = strings.TrimSpace(in.Picture)
}

func (in *CommentInput) Normalize() { in.Text = strings.TrimSpace(in.Text) }

func (in *CategoryInput) Normalize() { in.Name = strings.TrimSpace(in.Name) }
