package validators

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// ProductForm is the decoded multipart payload for product create/update.
type ProductForm struct {
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  uuid.UUID
	Quantity    int
	Shipping    bool

	PhotoData        []byte
	PhotoContentType string
}

// HasPhoto reports whether the form carried an image part.
func (f *ProductForm) HasPhoto() bool {
	return len(f.PhotoData) > 0
}

// DecodeProductForm parses a multipart product form. The photo part is
// optional; when present it must fit within photoMaxBytes.
func DecodeProductForm(r *http.Request, photoMaxBytes int64) (*ProductForm, error) {
	// Leave headroom for text fields beyond the photo ceiling.
	if err := r.ParseMultipartForm(photoMaxBytes + 64*1024); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	defer func() {
		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
	}()

	form := &ProductForm{
		Name:        SanitizeString(r.FormValue("name"), 200),
		Description: SanitizeString(r.FormValue("description"), 5000),
	}

	fieldErrs := map[string]string{}

	if form.Name == "" {
		fieldErrs["name"] = "is required"
	}
	if form.Description == "" {
		fieldErrs["description"] = "is required"
	}

	rawPrice := strings.TrimSpace(r.FormValue("price"))
	if rawPrice == "" {
		fieldErrs["price"] = "is required"
	} else if price, err := decimal.NewFromString(rawPrice); err != nil {
		fieldErrs["price"] = "must be a decimal number"
	} else if price.IsNegative() {
		fieldErrs["price"] = "must not be negative"
	} else {
		form.Price = price.Round(2)
	}

	rawCategory := strings.TrimSpace(r.FormValue("category"))
	if rawCategory == "" {
		fieldErrs["category"] = "is required"
	} else if categoryID, err := uuid.Parse(rawCategory); err != nil {
		fieldErrs["category"] = "must be a valid uuid"
	} else {
		form.CategoryID = categoryID
	}

	rawQuantity := strings.TrimSpace(r.FormValue("quantity"))
	if rawQuantity == "" {
		fieldErrs["quantity"] = "is required"
	} else if quantity, err := strconv.Atoi(rawQuantity); err != nil || quantity < 0 {
		fieldErrs["quantity"] = "must be a non-negative integer"
	} else {
		form.Quantity = quantity
	}

	if rawShipping := strings.TrimSpace(r.FormValue("shipping")); rawShipping != "" {
		shipping, err := strconv.ParseBool(rawShipping)
		if err != nil {
			fieldErrs["shipping"] = "must be a boolean"
		} else {
			form.Shipping = shipping
		}
	}

	if len(fieldErrs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(fieldErrs)
	}

	file, header, err := r.FormFile("photo")
	switch {
	case err == http.ErrMissingFile:
		return form, nil
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid photo upload")
	}
	defer file.Close()

	if header.Size > photoMaxBytes {
		return nil, photoTooLarge(photoMaxBytes)
	}

	// Size headers can lie; enforce the ceiling while reading.
	data, err := io.ReadAll(io.LimitReader(file, photoMaxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading photo upload")
	}
	if int64(len(data)) > photoMaxBytes {
		return nil, photoTooLarge(photoMaxBytes)
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "photo upload is empty")
	}

	form.PhotoData = data
	form.PhotoContentType = photoContentType(header, data)
	return form, nil
}

func photoTooLarge(limit int64) error {
	return pkgerrors.New(pkgerrors.CodePayloadTooLarge, "photo exceeds the size limit").
		WithDetails(map[string]any{"max_bytes": limit})
}

func photoContentType(header *multipart.FileHeader, data []byte) string {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return http.DetectContentType(data)
}
