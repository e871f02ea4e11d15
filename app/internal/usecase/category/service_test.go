package category

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	domcategory "example.com/cleantec-orders/app/internal/domain/category"
)

type mockSource struct {
	categories []*domcategory.Category
	err        error
}

func (m *mockSource) Categories(ctx context.Context) ([]*domcategory.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.categories, nil
}

func TestList_PrependsAllWithTotal(t *testing.T) {
	svc := NewService(&mockSource{categories: []*domcategory.Category{
		{Name: "Limpieza", ProductCount: 4},
		{Name: "Químicos", ProductCount: 3},
	}})

	cats, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, cats, 3)
	require.Equal(t, domcategory.AllLabel, cats[0].Name)
	require.Equal(t, int64(7), cats[0].ProductCount)
	require.Equal(t, "Limpieza", cats[1].Name)
}

func TestList_Empty(t *testing.T) {
	svc := NewService(&mockSource{})

	cats, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, cats, 1)
	require.Zero(t, cats[0].ProductCount)
}

func TestList_SourceError(t *testing.T) {
	svc := NewService(&mockSource{err: errors.New("db down")})

	cats, err := svc.List(context.Background())

	require.Error(t, err)
	require.Nil(t, cats)
}
