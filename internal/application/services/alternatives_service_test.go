package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dawadex/backend/internal/application/services"
	"github.com/dawadex/backend/internal/domain/entities"
)

type mockGenericListingRepository struct {
	mock.Mock
}

func (m *mockGenericListingRepository) ListBySignature(ctx context.Context, signature string) ([]*entities.GenericListing, error) {
	args := m.Called(ctx, signature)
	if v := args.Get(0); v != nil {
		return v.([]*entities.GenericListing), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPriceCeilingRepository struct {
	mock.Mock
}

func (m *mockPriceCeilingRepository) MinBySignature(ctx context.Context, signature string) (*float64, error) {
	args := m.Called(ctx, signature)
	if v := args.Get(0); v != nil {
		return v.(*float64), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPriceCeilingRepository) ListUnassigned(ctx context.Context) ([]*entities.PriceCeiling, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*entities.PriceCeiling), args.Error(1)
	}
	return nil, args.Error(1)
}

func price(v float64) *float64 { return &v }

func TestAlternativesService_JoinsDatasetsAndSummarizes(t *testing.T) {
	products := new(mockProductRepository)
	generics := new(mockGenericListingRepository)
	ceilings := new(mockPriceCeilingRepository)

	products.On("ListBySignature", mock.Anything, "5640").Return([]*entities.Product{
		{ID: 1, BrandName: "Brufen", MRPInr: price(30)},
		{ID: 2, BrandName: "Ibugesic", MRPInr: price(40)},
		{ID: 3, BrandName: "NoPrice", MRPInr: nil},
	}, nil).Once()
	generics.On("ListBySignature", mock.Anything, "5640").Return([]*entities.GenericListing{
		{ID: 10, GenericName: "Ibuprofen", MRPInr: price(10)},
		{ID: 11, GenericName: "Ibuprofen", MRPInr: price(20)},
	}, nil).Once()
	ceilings.On("MinBySignature", mock.Anything, "5640").Return(price(25), nil).Once()

	svc := services.NewAlternativesService(products, generics, ceilings)
	result, err := svc.Alternatives(context.Background(), "5640")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Len(t, result.Brands, 3)
	assert.Len(t, result.GenericListings, 2)
	require.NotNil(t, result.CeilingPrice)
	assert.Equal(t, 25.0, *result.CeilingPrice)

	summary := result.PriceSummary
	require.NotNil(t, summary)
	assert.Equal(t, 10.0, summary.Min)
	assert.Equal(t, 20.0, summary.Q1)
	assert.Equal(t, 30.0, summary.Median)
	assert.Equal(t, 40.0, summary.Q3)
	assert.Equal(t, 40.0, summary.Max)
	assert.Equal(t, 4, summary.Count)
	assert.Equal(t, 2, summary.BrandCount)
	assert.Equal(t, 2, summary.GenericCount)

	// Second lookup within the TTL is served from the in-process cache;
	// the Once expectations above fail if the repositories are hit again
	again, err := svc.Alternatives(context.Background(), "5640")
	require.NoError(t, err)
	assert.Same(t, result, again)
	products.AssertExpectations(t)
}

func TestAlternativesService_CeilingTokenMatchFallback(t *testing.T) {
	products := new(mockProductRepository)
	generics := new(mockGenericListingRepository)
	ceilings := new(mockPriceCeilingRepository)

	sig := "10689-161"
	products.On("ListBySignature", mock.Anything, sig).Return([]*entities.Product{
		{ID: 1, BrandName: "Ultracet", MRPInr: price(120)},
	}, nil)
	generics.On("ListBySignature", mock.Anything, sig).Return([]*entities.GenericListing{}, nil)
	ceilings.On("MinBySignature", mock.Anything, sig).Return(nil, nil)
	products.On("SaltsBySignature", mock.Anything, sig).Return([]entities.Salt{
		{Name: "Tramadol", Position: 1},
		{Name: "Acetaminophen", Position: 2},
	}, nil)
	ceilings.On("ListUnassigned", mock.Anything).Return([]*entities.PriceCeiling{
		{ID: 1, GenericName: "Acetaminophen + Tramadol", CeilingPriceInr: price(18.5)},
		{ID: 2, GenericName: "tramadol,acetaminophen", CeilingPriceInr: price(15)},
		{ID: 3, GenericName: "Acetaminophen", CeilingPriceInr: price(2)},
		{ID: 4, GenericName: "Tramadol | Acetaminophen | Caffeine", CeilingPriceInr: price(30)},
	}, nil)

	svc := services.NewAlternativesService(products, generics, ceilings)
	result, err := svc.Alternatives(context.Background(), sig)
	require.NoError(t, err)

	// Both two-ingredient rows match the salt set; the minimum price wins
	require.NotNil(t, result.CeilingPrice)
	assert.Equal(t, 15.0, *result.CeilingPrice)
}

func TestAlternativesService_NoPricesNoSummary(t *testing.T) {
	products := new(mockProductRepository)
	generics := new(mockGenericListingRepository)
	ceilings := new(mockPriceCeilingRepository)

	products.On("ListBySignature", mock.Anything, "999").Return([]*entities.Product{}, nil)
	generics.On("ListBySignature", mock.Anything, "999").Return([]*entities.GenericListing{}, nil)
	ceilings.On("MinBySignature", mock.Anything, "999").Return(nil, nil)
	products.On("SaltsBySignature", mock.Anything, "999").Return([]entities.Salt{}, nil)

	svc := services.NewAlternativesService(products, generics, ceilings)
	result, err := svc.Alternatives(context.Background(), "999")
	require.NoError(t, err)

	assert.Nil(t, result.PriceSummary)
	assert.Nil(t, result.CeilingPrice)
	assert.Empty(t, result.Brands)
}

func TestAlternativesService_BlankSignatureRejected(t *testing.T) {
	svc := services.NewAlternativesService(nil, nil, nil)
	_, err := svc.Alternatives(context.Background(), "  ")
	require.Error(t, err)
}
