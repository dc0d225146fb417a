package application

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GearShare/service-rental/internal/domain/money"
	"github.com/GearShare/service-rental/internal/imaging"
	"github.com/GearShare/service-rental/internal/platform/apperror"
	"github.com/GearShare/service-rental/internal/platform/auth"
	"github.com/GearShare/service-rental/internal/storage"
)

func code(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected application error, got %v", err)
	return appErr.Code
}

func newImageStack(t *testing.T, f *rentalFixture) (*ItemService, *ImageService, *storage.LocalImageStorage) {
	t.Helper()
	files, err := storage.NewLocalImageStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)
	items := NewItemService(f.store.Items(), files, zap.NewNop())
	images := NewImageService(f.store.Items(), f.store.Images(), files, imaging.NewProcessor(64), zap.NewNop())
	return items, images, files
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 128, 32))))
	return buf.Bytes()
}

func TestItemLifecycle(t *testing.T) {
	f := newRentalFixture(t)
	items, _, _ := newImageStack(t, f)
	ctx := context.Background()

	created, err := items.CreateItem(ctx, f.owner, ItemRequest{Title: "Canon 5D", Description: "Full frame body", Category: "photo"})
	require.NoError(t, err)
	assert.Equal(t, "PHOTO", created.Category)
	assert.Equal(t, "GOOD", created.Condition)
	assert.Equal(t, f.owner.ID, created.OwnerID)

	list, err := items.ListItems(ctx, "FULL FRAME", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	sports, err := items.ListItems(ctx, "", "SPORTS")
	require.NoError(t, err)
	require.Len(t, sports, 1)
	assert.Equal(t, f.item.ID(), sports[0].ID)
	assert.Equal(t, 1, sports[0].ListingsCount)

	_, err = items.ListItems(ctx, "", "BOATS")
	assert.Equal(t, apperror.CodeValidation, code(t, err))

	err = items.UpdateItem(ctx, newCaller(auth.RoleOwner), created.ID, ItemRequest{Title: "x", Category: "PHOTO"})
	assert.Equal(t, apperror.CodeForbidden, code(t, err))

	require.NoError(t, items.UpdateItem(ctx, f.admin, created.ID, ItemRequest{Title: "Canon 5D mk II", Category: "PHOTO", Condition: "USED"}))
	got, err := items.GetItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Canon 5D mk II", got.Title)
	assert.Equal(t, "USED", got.Condition)

	require.NoError(t, items.DeleteItem(ctx, f.owner, created.ID))
	_, err = items.GetItem(ctx, created.ID)
	assert.Equal(t, apperror.CodeNotFound, code(t, err))
}

func TestDeleteItemWithBookingsIsRefused(t *testing.T) {
	f := newRentalFixture(t)
	items, _, _ := newImageStack(t, f)
	f.request(t, "2025-06-01", "2025-06-03")

	err := items.DeleteItem(context.Background(), f.owner, f.item.ID())
	assert.Equal(t, apperror.CodeConflict, code(t, err))
}

func TestListingLifecycle(t *testing.T) {
	f := newRentalFixture(t)
	listings := NewListingService(f.store.Listings(), f.store.Items(), zap.NewNop())
	ctx := context.Background()

	terms := ListingTermsRequest{PricePerDay: money.FromUnits(25, 50), LocationCity: "Zagreb"}

	_, err := listings.CreateListing(ctx, f.owner, CreateListingRequest{ItemID: uuid.New(), ListingTermsRequest: terms})
	assert.Equal(t, apperror.CodeValidation, code(t, err))

	_, err = listings.CreateListing(ctx, newCaller(auth.RoleOwner), CreateListingRequest{ItemID: f.item.ID(), ListingTermsRequest: terms})
	assert.Equal(t, apperror.CodeForbidden, code(t, err))

	created, err := listings.CreateListing(ctx, f.owner, CreateListingRequest{ItemID: f.item.ID(), ListingTermsRequest: terms})
	require.NoError(t, err)
	assert.True(t, created.Active)
	assert.Equal(t, "MTB hardtail", created.ItemTitle)
	assert.Equal(t, "Zagreb", created.LocationCity)

	itemID := f.item.ID()
	forItem, err := listings.ListListings(ctx, &itemID)
	require.NoError(t, err)
	assert.Len(t, forItem, 2)
	assert.Equal(t, created.ID, forItem[0].ID)

	inactive := false
	require.NoError(t, listings.UpdateListing(ctx, f.owner, created.ID, ListingTermsRequest{PricePerDay: 100, Active: &inactive}))
	got, err := listings.GetListing(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, money.Cents(100), got.PricePerDay)

	err = listings.UpdateListing(ctx, f.owner, created.ID, ListingTermsRequest{PricePerDay: 0})
	assert.Equal(t, apperror.CodeValidation, code(t, err))

	require.NoError(t, listings.DeleteListing(ctx, f.owner, created.ID))

	f.request(t, "2025-06-01", "2025-06-01")
	err = listings.DeleteListing(ctx, f.admin, f.listing.ID())
	assert.Equal(t, apperror.CodeConflict, code(t, err))
}

func TestUploadItemImage(t *testing.T) {
	f := newRentalFixture(t)
	items, images, files := newImageStack(t, f)
	ctx := context.Background()

	img, err := images.UploadItemImage(ctx, f.owner, f.item.ID(), bytes.NewReader(tinyPNG(t)))
	require.NoError(t, err)
	assert.Equal(t, 0, img.SortOrder)
	assert.True(t, strings.HasPrefix(img.Path, "/uploads/items/"+f.item.ID().String()+"/"))
	assert.True(t, strings.HasSuffix(img.Path, ".jpg"))

	onDisk := filepath.Join(files.Root(), strings.TrimPrefix(img.Path, "/uploads/"))
	_, err = os.Stat(onDisk)
	require.NoError(t, err)

	second, err := images.UploadItemImage(ctx, f.admin, f.item.ID(), bytes.NewReader(tinyPNG(t)))
	require.NoError(t, err)
	assert.Equal(t, 1, second.SortOrder)

	listed, err := images.ListItemImages(ctx, f.item.ID())
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, img.ID, listed[0].ID)

	item, err := items.GetItem(ctx, f.item.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{img.Path, second.Path}, item.Images)

	_, err = images.UploadItemImage(ctx, newCaller(auth.RoleOwner), f.item.ID(), bytes.NewReader(tinyPNG(t)))
	assert.Equal(t, apperror.CodeForbidden, code(t, err))

	_, err = images.UploadItemImage(ctx, f.owner, f.item.ID(), strings.NewReader("GIF89a not really"))
	assert.Equal(t, apperror.CodeValidation, code(t, err))
}

func TestUploadItemImageTooLarge(t *testing.T) {
	f := newRentalFixture(t)
	_, images, _ := newImageStack(t, f)

	body := http.MaxBytesReader(httptest.NewRecorder(), io.NopCloser(bytes.NewReader(tinyPNG(t))), 16)
	_, err := images.UploadItemImage(context.Background(), f.owner, f.item.ID(), body)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestAuthRegisterLogin(t *testing.T) {
	f := newRentalFixture(t)
	jwt := auth.NewJWTManager("test-secret", "gearshare", time.Hour)
	svc := NewAuthService(f.store.Users(), jwt, zap.NewNop())
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterRequest{Email: " Ana@Example.com ", Password: "hunter22", Role: "owner"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", reg.User.Email)
	assert.Equal(t, []string{"OWNER"}, reg.User.Roles)
	assert.NotEmpty(t, reg.Token)

	claims, err := jwt.Validate(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, []auth.Role{auth.RoleOwner}, claims.RoleSet())

	admin, err := svc.Register(ctx, RegisterRequest{Email: "root@example.com", Password: "hunter22", Role: "ADMIN"})
	require.NoError(t, err)
	assert.Equal(t, []string{"RENTER"}, admin.User.Roles)

	_, err = svc.Register(ctx, RegisterRequest{Email: "ana@example.com", Password: "another1"})
	assert.Equal(t, apperror.CodeConflict, code(t, err))

	login, err := svc.Login(ctx, LoginRequest{Email: "ANA@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	_, err = svc.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "wrong"})
	assert.Equal(t, apperror.CodeUnauthorized, code(t, err))
	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	assert.Equal(t, apperror.CodeUnauthorized, code(t, err))

	me, err := svc.Me(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", me.DisplayName)
}
