package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoard(t *testing.T) {
	b := NewBoard()

	assert.Len(t, b.Properties(), 28)

	boardwalk := b.Property(39)
	require.NotNil(t, boardwalk)
	assert.Equal(t, "Boardwalk", boardwalk.Name)
	assert.Equal(t, 400, boardwalk.Cost)
	assert.Equal(t, GroupDarkBlue, boardwalk.Group)

	assert.Nil(t, b.Property(0), "GO is not purchasable")
	assert.Nil(t, b.Property(20), "Free Parking is not purchasable")
	assert.Nil(t, b.Property(4), "tax spaces are not purchasable")

	assert.Equal(t, SpaceGoToJail, b.Space(30).Type)
	assert.Equal(t, 200, b.Space(4).Cost)
	assert.Equal(t, 100, b.Space(38).Cost)
}

func TestColorPropertyRent(t *testing.T) {
	b := NewBoard()
	med := b.Property(1)
	med.OwnerID = "alice"

	// Base rent without monopoly.
	assert.Equal(t, 2, b.Rent(1, 7, "bob"))

	// Monopoly doubles the undeveloped rent.
	b.Property(3).OwnerID = "alice"
	assert.Equal(t, 4, b.Rent(1, 7, "bob"))

	// Houses use the rent table.
	med.Houses = 1
	assert.Equal(t, 10, b.Rent(1, 7, "bob"))
	med.Houses = 4
	assert.Equal(t, 160, b.Rent(1, 7, "bob"))

	// Hotel rent.
	med.Houses = 0
	med.HasHotel = true
	assert.Equal(t, 250, b.Rent(1, 7, "bob"))
}

func TestRailroadRentTiers(t *testing.T) {
	b := NewBoard()
	railroads := []int{5, 15, 25, 35}
	want := []int{25, 50, 100, 200}

	for i, pos := range railroads {
		b.Property(pos).OwnerID = "alice"
		assert.Equal(t, want[i], b.Rent(5, 7, "bob"), "rent with %d railroads", i+1)
	}
}

func TestUtilityRent(t *testing.T) {
	b := NewBoard()

	b.Property(12).OwnerID = "alice"
	assert.Equal(t, 7*4, b.Rent(12, 7, "bob"), "one utility pays 4x dice")

	b.Property(28).OwnerID = "alice"
	assert.Equal(t, 7*10, b.Rent(12, 7, "bob"), "both utilities pay 10x dice")
}

func TestNoRentCases(t *testing.T) {
	b := NewBoard()

	assert.Zero(t, b.Rent(1, 7, "bob"), "unowned property")

	prop := b.Property(1)
	prop.OwnerID = "alice"
	assert.Zero(t, b.Rent(1, 7, "alice"), "own property")

	prop.IsMortgaged = true
	assert.Zero(t, b.Rent(1, 7, "bob"), "mortgaged property")
}

func TestHasMonopoly(t *testing.T) {
	b := NewBoard()

	b.Property(1).OwnerID = "alice"
	assert.False(t, b.HasMonopoly("alice", GroupBrown))

	b.Property(3).OwnerID = "alice"
	assert.True(t, b.HasMonopoly("alice", GroupBrown))

	// Railroads and utilities never count as monopolies.
	for _, pos := range []int{5, 15, 25, 35} {
		b.Property(pos).OwnerID = "alice"
	}
	assert.False(t, b.HasMonopoly("alice", GroupRailroad))
}

func TestEvenBuildingRule(t *testing.T) {
	b := NewBoard()
	b.Property(1).OwnerID = "alice"

	assert.False(t, b.CanBuildHouse(1, "alice"), "no monopoly yet")

	b.Property(3).OwnerID = "alice"
	assert.True(t, b.CanBuildHouse(1, "alice"))

	require.True(t, b.Property(1).BuildHouse())
	assert.False(t, b.CanBuildHouse(1, "alice"), "would run ahead of Baltic")
	assert.True(t, b.CanBuildHouse(3, "alice"))

	require.True(t, b.Property(3).BuildHouse())
	assert.True(t, b.CanBuildHouse(1, "alice"), "level again")
}

func TestHotelRequiresFullGroupDevelopment(t *testing.T) {
	b := NewBoard()
	b.Property(1).OwnerID = "alice"
	b.Property(3).OwnerID = "alice"

	b.Property(1).Houses = 4
	assert.False(t, b.CanBuildHotel(1, "alice"), "Baltic still undeveloped")

	b.Property(3).Houses = 4
	assert.True(t, b.CanBuildHotel(1, "alice"))

	require.True(t, b.Property(1).BuildHotel())
	assert.Equal(t, 0, b.Property(1).Houses)
	assert.True(t, b.Property(1).HasHotel)
	assert.True(t, b.CanBuildHotel(3, "alice"), "hotel counts as full development")
}

func TestMortgageMath(t *testing.T) {
	b := NewBoard()

	med := b.Property(1)
	assert.Equal(t, 30, med.MortgageValue())
	assert.Equal(t, 33, med.UnmortgageCost())

	reading := b.Property(5)
	assert.Equal(t, 100, reading.MortgageValue())
	assert.Equal(t, 110, reading.UnmortgageCost())

	stCharles := b.Property(11)
	assert.Equal(t, 70, stCharles.MortgageValue())
	assert.Equal(t, 77, stCharles.UnmortgageCost())
}

func TestMortgageBlockedByBuildings(t *testing.T) {
	b := NewBoard()
	prop := b.Property(1)
	prop.OwnerID = "alice"
	prop.Houses = 1

	assert.Zero(t, prop.Mortgage(), "cannot mortgage with buildings")

	prop.Houses = 0
	assert.Equal(t, 30, prop.Mortgage())
	assert.True(t, prop.IsMortgaged)
	assert.Zero(t, prop.Mortgage(), "cannot mortgage twice")
}

func TestSellBuildings(t *testing.T) {
	b := NewBoard()
	prop := b.Property(1)
	prop.OwnerID = "alice"
	prop.Houses = 4
	require.True(t, prop.BuildHotel())

	assert.Equal(t, 25, prop.SellHotel())
	assert.Equal(t, 4, prop.Houses)
	assert.False(t, prop.HasHotel)

	assert.Equal(t, 25, prop.SellHouse())
	assert.Equal(t, 3, prop.Houses)
}

func TestBoardReset(t *testing.T) {
	b := NewBoard()
	prop := b.Property(1)
	prop.OwnerID = "alice"
	prop.Houses = 3
	prop.IsMortgaged = false
	b.Property(5).OwnerID = "bob"

	b.Reset()

	assert.Empty(t, prop.OwnerID)
	assert.Zero(t, prop.Houses)
	assert.Empty(t, b.Property(5).OwnerID)
}
