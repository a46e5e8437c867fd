package dataset

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dataspace-exchange/dataspace-backend/internal/auth"
	"github.com/dataspace-exchange/dataspace-backend/internal/config"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/controller/role"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
	authmiddleware "github.com/dataspace-exchange/dataspace-backend/internal/web/middleware/auth"
)

type fixture struct {
	db       *gorm.DB
	org      models.Organization
	other    models.Organization
	private  models.Dataset
	public   models.Dataset
	foreign  models.Dataset
	editor   models.User
	outsider models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Organization{},
		&models.OrganizationMembership{},
		&models.Dataset{},
		&models.DatasetPermission{},
	))

	_, err = role.Seed(db)
	require.NoError(t, err)

	f := &fixture{db: db}

	f.org = models.Organization{Name: "acme", Slug: "acme"}
	f.other = models.Organization{Name: "globex", Slug: "globex"}
	require.NoError(t, db.Create(&f.org).Error)
	require.NoError(t, db.Create(&f.other).Error)

	f.private = models.Dataset{Title: "internal sales", OrganizationID: f.org.ID}
	f.public = models.Dataset{Title: "weather", OrganizationID: f.org.ID, Published: true}
	f.foreign = models.Dataset{Title: "globex internal", OrganizationID: f.other.ID}
	require.NoError(t, db.Create(&f.private).Error)
	require.NoError(t, db.Create(&f.public).Error)
	require.NoError(t, db.Create(&f.foreign).Error)

	f.editor = models.User{Active: true, Username: "editor", KeycloakID: "kc-editor"}
	f.outsider = models.User{Active: true, Username: "outsider", KeycloakID: "kc-out"}
	require.NoError(t, db.Create(&f.editor).Error)
	require.NoError(t, db.Create(&f.outsider).Error)

	editorRole, err := role.Get(db, models.RoleEditor)
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.OrganizationMembership{
		UserID: f.editor.ID, OrganizationID: f.org.ID, RoleID: editorRole.ID,
	}).Error)

	return f
}

func (f *fixture) app(t *testing.T, user models.User) *fiber.App {
	t.Helper()

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user.ID > 0 {
			c.Locals(authmiddleware.LocalsUser, user)
		}

		return c.Next()
	})

	svc := Service{}
	require.NoError(t, svc.Init(app, &config.Config{}, f.db, auth.NewService(f.db)))

	return app
}

func request(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func listTitles(t *testing.T, resp *http.Response) []string {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var datasets []models.Dataset

	require.NoError(t, json.Unmarshal(body, &datasets))

	titles := make([]string, 0, len(datasets))
	for _, ds := range datasets {
		titles = append(titles, ds.Title)
	}

	return titles
}

func TestListVisibility(t *testing.T) {
	f := newFixture(t)

	// anonymous sees published only
	resp := request(t, f.app(t, models.User{}), http.MethodGet, Path, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.ElementsMatch(t, []string{"weather"}, listTitles(t, resp))

	// members see their organization's datasets plus published ones
	resp = request(t, f.app(t, f.editor), http.MethodGet, Path, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.ElementsMatch(t, []string{"internal sales", "weather"}, listTitles(t, resp))

	// superusers see everything
	superuser := models.User{ID: 999, Username: "root", IsSuperuser: true}
	require.NoError(t, f.db.Create(&superuser).Error)

	resp = request(t, f.app(t, superuser), http.MethodGet, Path, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.ElementsMatch(t, []string{"internal sales", "weather", "globex internal"}, listTitles(t, resp))
}

func TestGetVisibility(t *testing.T) {
	f := newFixture(t)

	publicPath := Path + "/" + strconv.FormatUint(f.public.ID, 10)
	privatePath := Path + "/" + strconv.FormatUint(f.private.ID, 10)

	// published datasets are public
	resp := request(t, f.app(t, models.User{}), http.MethodGet, publicPath, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// private datasets need authentication and a role
	resp = request(t, f.app(t, models.User{}), http.MethodGet, privatePath, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = request(t, f.app(t, f.outsider), http.MethodGet, privatePath, "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = request(t, f.app(t, f.editor), http.MethodGet, privatePath, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = request(t, f.app(t, f.editor), http.MethodGet, Path+"/99999", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	body := `{"title":"new dataset","organization_id":` + strconv.FormatUint(f.org.ID, 10) + `}`

	resp := request(t, f.app(t, f.editor), http.MethodPost, Path, body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// outsiders lack the add permission
	resp = request(t, f.app(t, f.outsider), http.MethodPost, Path, body)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// anonymous rejected before any check
	resp = request(t, f.app(t, models.User{}), http.MethodPost, Path, body)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = request(t, f.app(t, f.editor), http.MethodPost, Path, `{"title":"no org"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture(t)

	path := Path + "/" + strconv.FormatUint(f.private.ID, 10)
	body := `{"title":"renamed","published":true}`

	// editors may change but not delete
	resp := request(t, f.app(t, f.editor), http.MethodPut, path, body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var ds models.Dataset

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &ds))
	assert.Equal(t, "renamed", ds.Title)
	assert.True(t, ds.Published)

	resp = request(t, f.app(t, f.editor), http.MethodDelete, path, "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// a dataset grant with the owner role unlocks deletion
	ownerRole, err := role.Get(f.db, models.RoleOwner)
	require.NoError(t, err)

	require.NoError(t, f.db.Create(&models.DatasetPermission{
		UserID: f.editor.ID, DatasetID: f.private.ID, RoleID: ownerRole.ID,
	}).Error)

	resp = request(t, f.app(t, f.editor), http.MethodDelete, path, "")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestGrantManagement(t *testing.T) {
	f := newFixture(t)

	path := Path + "/" + strconv.FormatUint(f.private.ID, 10) + "/permissions"
	body := `{"user_id":` + strconv.FormatUint(f.outsider.ID, 10) + `,"role":"viewer"}`

	// editors hold the add permission, so they may hand out grants
	resp := request(t, f.app(t, f.editor), http.MethodPost, path, body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// the grant now opens the dataset for the outsider
	svc := auth.NewService(f.db)

	allowed, err := svc.CheckDatasetPermission(f.outsider.ID, f.private.ID, models.OperationView)
	require.NoError(t, err)
	assert.True(t, allowed)

	resp = request(t, f.app(t, f.editor), http.MethodPost, path,
		`{"user_id":`+strconv.FormatUint(f.outsider.ID, 10)+`,"role":"czar"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// a viewer grant does not allow the outsider to manage grants
	resp = request(t, f.app(t, f.outsider), http.MethodPost, path, body)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// revoking needs the delete permission, which editors lack
	userPath := path + "/" + strconv.FormatUint(f.outsider.ID, 10)

	resp = request(t, f.app(t, f.editor), http.MethodDelete, userPath, "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	adminRole, err := role.Get(f.db, models.RoleAdmin)
	require.NoError(t, err)

	steward := models.User{Active: true, Username: "steward", KeycloakID: "kc-steward"}
	require.NoError(t, f.db.Create(&steward).Error)
	require.NoError(t, f.db.Create(&models.OrganizationMembership{
		UserID: steward.ID, OrganizationID: f.org.ID, RoleID: adminRole.ID,
	}).Error)

	resp = request(t, f.app(t, steward), http.MethodDelete, userPath, "")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = request(t, f.app(t, steward), http.MethodDelete, userPath, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
