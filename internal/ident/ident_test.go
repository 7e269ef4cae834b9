package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAllocatorsStartAtOne(t *testing.T) {
	a := NewAllocators()
	assert.Equal(t, EntityId(1), a.NextEntity())
	assert.Equal(t, SaveId(1), a.NextSave())
	assert.Equal(t, SnapshotId(1), a.NextSnapshot())
	assert.Equal(t, BranchId(1), a.NextBranch())
}

func TestAllocatorsAreMonotoneAndIndependent(t *testing.T) {
	a := NewAllocators()
	assert.Equal(t, EntityId(1), a.NextEntity())
	assert.Equal(t, EntityId(2), a.NextEntity())
	assert.Equal(t, SaveId(1), a.NextSave(), "a separate counter must not be perturbed by entity allocations")
	assert.Equal(t, EntityId(3), a.NextEntity())
}

func TestHighWaterEntityTracksNextUnallocated(t *testing.T) {
	a := NewAllocators()
	assert.Equal(t, EntityId(1), a.HighWaterEntity())
	a.NextEntity()
	a.NextEntity()
	assert.Equal(t, EntityId(3), a.HighWaterEntity())
}

func TestSetNextEntityForcesCounter(t *testing.T) {
	a := NewAllocators()
	a.SetNextEntity(500)
	assert.Equal(t, EntityId(500), a.NextEntity())
	assert.Equal(t, EntityId(501), a.HighWaterEntity())
}

func TestResetForTestHelpersReturnCountersToOne(t *testing.T) {
	a := NewAllocators()
	a.NextEntity()
	a.NextSave()
	a.NextSnapshot()
	a.NextBranch()

	a.ResetEntityForTest()
	a.ResetSaveForTest()
	a.ResetSnapshotForTest()
	a.ResetBranchForTest()

	assert.Equal(t, EntityId(1), a.NextEntity())
	assert.Equal(t, SaveId(1), a.NextSave())
	assert.Equal(t, SnapshotId(1), a.NextSnapshot())
	assert.Equal(t, BranchId(1), a.NextBranch())
}

func TestToEventIdDerivesFromEntityId(t *testing.T) {
	e := EntityId(42)
	assert.Equal(t, EventId(42), ToEventId(e))
}

func TestIdStringersIncludeKindPrefix(t *testing.T) {
	assert.Equal(t, "entity#7", EntityId(7).String())
	assert.Equal(t, "event#7", EventId(7).String())
	assert.Equal(t, "character#7", CharacterId(7).String())
	assert.Equal(t, "faction#7", FactionId(7).String())
	assert.Equal(t, "site#7", SiteId(7).String())
	assert.Equal(t, "arc#7", ArcId(7).String())
	assert.Equal(t, "save#7", SaveId(7).String())
	assert.Equal(t, "snapshot#7", SnapshotId(7).String())
	assert.Equal(t, "branch#7", BranchId(7).String())
}

func TestRawIntConstructors(t *testing.T) {
	assert.Equal(t, EntityId(9), ToEntityId(9))
	assert.Equal(t, CharacterId(9), ToCharacterId(9))
	assert.Equal(t, FactionId(9), ToFactionId(9))
	assert.Equal(t, SiteId(9), ToSiteId(9))
	assert.Equal(t, ArcId(9), ToArcId(9))
	assert.Equal(t, SaveId(9), ToSaveId(9))
	assert.Equal(t, SnapshotId(9), ToSnapshotId(9))
	assert.Equal(t, BranchId(9), ToBranchId(9))
}
