package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/app/services"
	"github.com/krishi360/krishi/internal/testdb"
	gql "github.com/krishi360/krishi/pkg/graphql"
)

func TestCatalogQueries(t *testing.T) {
	db := testdb.Open(t)
	farmer := testdb.User(t, db, models.RoleFarmer)
	onion := testdb.Crop(t, db, farmer.ID, "Red onion", 18, 200)
	testdb.Crop(t, db, farmer.ID, "Garlic", 90, 20)
	hidden := testdb.Crop(t, db, farmer.ID, "White onion", 20, 50)
	require.NoError(t, db.Model(&models.Crop{}).Where("id = ?", hidden.ID).Update("is_active", false).Error)

	schema, err := NewSchema(services.NewCropService(db))
	require.NoError(t, err)

	res := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: `{ crops(search: "onion") { id name unit farmer { id } } }`,
		Context:       context.Background(),
	})
	require.False(t, res.HasErrors(), "%v", res.Errors)

	crops := res.Data.(map[string]any)["crops"].([]any)
	require.Len(t, crops, 1)
	first := crops[0].(map[string]any)
	assert.Equal(t, int(onion.ID), first["id"])
	assert.Equal(t, "Red onion", first["name"])
	assert.Equal(t, int(farmer.ID), first["farmer"].(map[string]any)["id"])

	res = graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  `query($id: Int!) { crop(id: $id) { name } }`,
		VariableValues: map[string]any{"id": int(hidden.ID)},
		Context:        context.Background(),
	})
	require.False(t, res.HasErrors(), "%v", res.Errors)
	assert.Nil(t, res.Data.(map[string]any)["crop"])
}

func TestCatalogHandler(t *testing.T) {
	db := testdb.Open(t)
	farmer := testdb.User(t, db, models.RoleFarmer)
	testdb.Crop(t, db, farmer.ID, "Millet", 40, 10)

	schema, err := NewSchema(services.NewCropService(db))
	require.NoError(t, err)
	h := gql.Handler(schema)

	body, _ := json.Marshal(gql.Request{Query: `{ crops(limit: 5) { name price_per_unit } }`})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/graphql", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Data struct {
			Crops []struct {
				Name         string  `json:"name"`
				PricePerUnit float64 `json:"price_per_unit"`
			} `json:"crops"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Data.Crops, 1)
	assert.Equal(t, "Millet", out.Data.Crops[0].Name)
	assert.Equal(t, 40.0, out.Data.Crops[0].PricePerUnit)

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/graphql", bytes.NewReader([]byte("nope"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
