package services

import "time"

// UserDTO is the API-facing projection of a user. It never carries the
// password hash.
type UserDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SignInResult pairs the authenticated user with their session token.
type SignInResult struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// GetUserRequest looks a user up by exactly one of id or email.
type GetUserRequest struct {
	ID    string
	Email string
}

// ProductDTO is the shared projection of a catalog product. Enumerations are
// stringified; soft-delete timestamps are never exposed.
type ProductDTO struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	CreatorID     string    `json:"creator_id"`
	IsPublished   bool      `json:"is_published"`
	CoverImageURL *string   `json:"cover_image_url"`
	Type          string    `json:"type"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CourseDTO extends ProductDTO with course fields. Module and lesson counts
// are always computed with dedicated count queries, so they are correct even
// when the children were not loaded. Modules are attached only when details
// were requested.
type CourseDTO struct {
	ProductDTO
	Level       string      `json:"level"`
	ModuleCount int         `json:"module_count"`
	LessonCount int         `json:"lesson_count"`
	Modules     []ModuleDTO `json:"modules,omitempty"`
}

// ModuleDTO is the projection of a course module.
type ModuleDTO struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description *string     `json:"description,omitempty"`
	Order       int         `json:"order"`
	Lessons     []LessonDTO `json:"lessons,omitempty"`
}

// LessonDTO is the projection of a lesson.
type LessonDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Order       int    `json:"order"`
	Type        string `json:"type"`
}

// BookDTO extends ProductDTO with book fields. The download URL is the paid
// asset and is deliberately withheld from the projection.
type BookDTO struct {
	ProductDTO
	Author     string  `json:"author"`
	Language   *string `json:"language,omitempty"`
	Format     *string `json:"format,omitempty"`
	PreviewURL *string `json:"preview_url,omitempty"`
}

// CreateCourseRequest creates a new course. Currency defaults to SATS and
// level to Beginner when omitted.
type CreateCourseRequest struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Description   string  `json:"description" validate:"required"`
	Price         float64 `json:"price" validate:"gte=0"`
	Currency      string  `json:"currency"`
	IsPublished   bool    `json:"is_published"`
	CoverImageURL *string `json:"cover_image_url"`
	Level         string  `json:"level"`
}

// UpdateCourseRequest carries a partial update: only non-nil fields overwrite
// the stored values.
type UpdateCourseRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0"`
	Currency      *string  `json:"currency"`
	IsPublished   *bool    `json:"is_published"`
	CoverImageURL *string  `json:"cover_image_url"`
	Level         *string  `json:"level"`
}

// CreateBookRequest creates a new book.
type CreateBookRequest struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Description   string  `json:"description" validate:"required"`
	Price         float64 `json:"price" validate:"gte=0"`
	Currency      string  `json:"currency"`
	IsPublished   bool    `json:"is_published"`
	CoverImageURL *string `json:"cover_image_url"`
	Author        string  `json:"author" validate:"required"`
	Language      *string `json:"language"`
	Format        *string `json:"format"`
	PreviewURL    *string `json:"preview_url"`
	DownloadURL   *string `json:"download_url"`
}

// UpdateBookRequest carries a partial update: only non-nil fields overwrite
// the stored values.
type UpdateBookRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0"`
	Currency      *string  `json:"currency"`
	IsPublished   *bool    `json:"is_published"`
	CoverImageURL *string  `json:"cover_image_url"`
	Author        *string  `json:"author"`
	Language      *string  `json:"language"`
	Format        *string  `json:"format"`
	PreviewURL    *string  `json:"preview_url"`
	DownloadURL   *string  `json:"download_url"`
}
