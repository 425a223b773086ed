package bots

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateMemoryDecay(t *testing.T) {
	t.Run("high resistance after 100 turns", func(t *testing.T) {
		// 90 * (1 - 100*0.01*(1-0.8)) = 90 * 0.8
		got := CalculateMemoryDecay(90, 100, ResistHigh, BaseDecayRate)
		require.InDelta(t, 72.0, got, 1e-9)
	})

	t.Run("permanent never decays", func(t *testing.T) {
		require.InDelta(t, 90.0, CalculateMemoryDecay(90, 10000, ResistPermanent, BaseDecayRate), 1e-9)
	})

	t.Run("floors at zero", func(t *testing.T) {
		// very_low resistance fully decays within ~112 turns
		require.Zero(t, CalculateMemoryDecay(10, 200, ResistVeryLow, BaseDecayRate))
	})

	t.Run("zero turns is identity", func(t *testing.T) {
		require.InDelta(t, 50.0, CalculateMemoryDecay(50, 0, ResistMedium, BaseDecayRate), 1e-9)
	})

	t.Run("monotonically non-increasing", func(t *testing.T) {
		prev := CalculateMemoryDecay(50, 0, ResistMedium, BaseDecayRate)
		for turns := 1; turns <= 300; turns++ {
			cur := CalculateMemoryDecay(50, turns, ResistMedium, BaseDecayRate)
			require.LessOrEqual(t, cur, prev, "turns=%d", turns)
			require.GreaterOrEqual(t, cur, 0.0)
			prev = cur
		}
	})
}

func TestRollPermanentScar(t *testing.T) {
	always := &scriptedSource{floats: []float64{0.0}}

	t.Run("positive events never scar", func(t *testing.T) {
		// weight 90 but positive
		require.False(t, RollPermanentScar(EventSavedFromDestruction, always))
	})

	t.Run("light negative events never scar", func(t *testing.T) {
		// negative but weight 10 < 30
		require.False(t, RollPermanentScar(EventInsultedMe, &scriptedSource{floats: []float64{0.0}}))
	})

	t.Run("severe negative events scar at 20 percent", func(t *testing.T) {
		require.True(t, RollPermanentScar(EventBetrayedAlliance, &scriptedSource{floats: []float64{0.19}}))
		require.False(t, RollPermanentScar(EventBetrayedAlliance, &scriptedSource{floats: []float64{0.20}}))
	})

	t.Run("unknown event never scars", func(t *testing.T) {
		require.False(t, RollPermanentScar("made_up_event", always))
	})
}

func TestNetRelationship(t *testing.T) {
	t.Run("scars hold their full weight forever", func(t *testing.T) {
		memories := []MemoryRecord{{
			EventType: EventAttackedMe, OriginalWeight: 50, Turn: 0,
			IsNegative: true, Resistance: ResistMedium, IsPermanentScar: true,
		}}
		require.InDelta(t, -50.0, CalculateNetRelationship(memories, 10000), 1e-9)
	})

	t.Run("non-scars fade out", func(t *testing.T) {
		memories := []MemoryRecord{{
			EventType: EventAttackedMe, OriginalWeight: 50, Turn: 0,
			IsNegative: true, Resistance: ResistMedium,
		}}
		require.InDelta(t, -50.0, CalculateNetRelationship(memories, 0), 1e-9)
		require.Zero(t, CalculateNetRelationship(memories, 1000))
	})

	t.Run("positives offset negatives", func(t *testing.T) {
		memories := []MemoryRecord{
			{OriginalWeight: 50, Turn: 5, IsNegative: true, Resistance: ResistMedium},
			{OriginalWeight: 60, Turn: 5, IsNegative: false, Resistance: ResistHigh},
		}
		require.InDelta(t, 10.0, CalculateNetRelationship(memories, 5), 1e-9)
	})
}

func TestGetRelationshipTier(t *testing.T) {
	cases := []struct {
		score float64
		want  RelationshipTier
	}{
		{-250, TierHostile},
		{-100.01, TierHostile},
		{-100, TierUnfriendly},
		{-25.01, TierUnfriendly},
		{-25, TierNeutral},
		{0, TierNeutral},
		{24.99, TierNeutral},
		{25, TierFriendly},
		{99.99, TierFriendly},
		{100, TierAllied},
		{500, TierAllied},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, GetRelationshipTier(tc.score), "score %v", tc.score)
	}
}

func TestPruneKeepsScars(t *testing.T) {
	memories := []MemoryRecord{
		{EventType: EventAttackedMe, OriginalWeight: 50, Turn: 0,
			IsNegative: true, Resistance: ResistMedium, IsPermanentScar: true},
		{EventType: EventFairTrade, OriginalWeight: 10, Turn: 0,
			Resistance: ResistVeryLow},
	}
	kept := PruneDecayedMemories(memories, 5000, 0.5)
	require.Len(t, kept, 1)
	require.True(t, kept[0].IsPermanentScar)
}

func TestRelationshipLifecycle(t *testing.T) {
	b := NewBot("e1", ArchDiplomat, DifficultyMedium)

	rel := b.Relationship("e2")
	require.Same(t, rel, b.Relationship("e2"), "lazy creation returns the same record")

	// No scar: roll above the scar chance.
	noScar := &scriptedSource{floats: []float64{0.9}}
	rec := rel.AddMemory(EventAttackedMe, 5, noScar)
	require.False(t, rec.IsPermanentScar)
	require.InDelta(t, -50.0, rel.NetScore, 1e-9)
	require.Equal(t, TierUnfriendly, GetRelationshipTier(rel.NetScore))

	// Decay after 50 turns: 50 * (1 - 50*0.01*0.5) = 37.5.
	rel.Refresh(55)
	require.InDelta(t, -37.5, rel.NetScore, 1e-9)

	// Fully decayed, pruned, back to neutral.
	rel.Refresh(5000)
	require.Empty(t, rel.Memories)
	require.Zero(t, rel.NetScore)
	require.Empty(t, b.GrudgeTargets())
}

func TestGrudgeTargets(t *testing.T) {
	b := NewBot("e1", ArchWarlord, DifficultyMedium)
	b.Relationship("e2").AddMemory(EventBetrayedAlliance, 1, &scriptedSource{floats: []float64{0.0}})
	b.Relationship("e3").AddMemory(EventFairTrade, 1, &scriptedSource{floats: []float64{0.0}})

	grudges := b.GrudgeTargets()
	require.True(t, grudges["e2"])
	require.False(t, grudges["e3"])

	// Scars survive any amount of decay.
	b.Relationship("e2").Refresh(100000)
	require.True(t, b.GrudgeTargets()["e2"])
	require.Len(t, b.Relationship("e2").PermanentScars(), 1)
}

func TestRefreshKeepsScarWeight(t *testing.T) {
	rel := &RelationshipMemory{TargetEmpireID: "e2"}
	rec := rel.AddMemory(EventBetrayedAlliance, 0, &scriptedSource{floats: []float64{0.0}})
	require.True(t, rec.IsPermanentScar)

	// High nominal resistance would fully decay a 90-weight memory well
	// before turn 500; the scar flag must pin the stored weight.
	rel.Refresh(500)
	scars := rel.PermanentScars()
	require.Len(t, scars, 1)
	require.InDelta(t, 90.0, scars[0].CurrentWeight, 1e-9)
	require.InDelta(t, -90.0, rel.NetScore, 1e-9)
}

func TestEventEntryForPanicsOnUnknown(t *testing.T) {
	require.Panics(t, func() { EventEntryFor("no_such_event") })
}
