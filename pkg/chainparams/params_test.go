package chainparams

import "testing"

func TestMainnetGenesisHashStable(t *testing.T) {
	a := Mainnet()
	b := Mainnet()
	if a.GenesisHash != b.GenesisHash {
		t.Fatal("genesis hash must be deterministic across constructions")
	}
}

func TestTestnetReducedDifficulty(t *testing.T) {
	p := Testnet()
	if !p.ReduceMinDifficulty {
		t.Fatal("testnet must enable the easy-block rule")
	}
	if p.ReduceMinDifficultyGap <= 0 {
		t.Fatal("testnet easy-block gap must be positive")
	}
}

func TestPassesCheckpoint(t *testing.T) {
	p := Mainnet()
	p.Checkpoints = []Checkpoint{{Height: 100, Hash: [32]byte{0xAA}}}

	if !p.PassesCheckpoint(50, [32]byte{0xBB}) {
		t.Fatal("heights without a checkpoint must always pass")
	}
	if !p.PassesCheckpoint(100, [32]byte{0xAA}) {
		t.Fatal("matching hash at checkpoint height must pass")
	}
	if p.PassesCheckpoint(100, [32]byte{0xBB}) {
		t.Fatal("mismatched hash at checkpoint height must fail")
	}
}

func TestPriorCheckpoint(t *testing.T) {
	p := Mainnet()
	p.Checkpoints = []Checkpoint{
		{Height: 100, Hash: [32]byte{0x01}},
		{Height: 200, Hash: [32]byte{0x02}},
	}

	if got := p.PriorCheckpoint(150); got == nil || got.Height != 100 {
		t.Fatalf("expected checkpoint at height 100, got %+v", got)
	}
	if got := p.PriorCheckpoint(250); got == nil || got.Height != 200 {
		t.Fatalf("expected checkpoint at height 200, got %+v", got)
	}
	if got := p.PriorCheckpoint(50); got != nil {
		t.Fatalf("expected no checkpoint before first, got %+v", got)
	}
}
