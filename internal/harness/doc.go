// Package harness runs seeded bout scenarios and checks their outcomes.
//
// A scenario pins everything that influences a bout: both fencers, the
// threshold, the start band, the seed and the round cap. Running it twice
// therefore produces byte-identical transcripts, which is what golden
// comparison relies on.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: dominant_fencer
//	description: "A perfect fencer shuts out a fencer with no skill"
//	bout:
//	  fencers:
//	    - {name: Alice, skill: 1.0}
//	    - {name: Bob, skill: 0.0}
//	  win_threshold: 3
//	  start_distance: lunge
//	  seed: 7
//	  max_rounds: 5000
//	assertions:
//	  - type: winner
//	    fencer: Alice
//	  - type: final_score
//	    scores: [3, 0]
//	  - type: never_selects
//	    actions: [one_two, double_disengage]
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - finished: the bout ended with a winner
//   - round_limit: the round cap was hit before anyone reached the threshold
//   - winner: the named fencer won
//   - final_score: the final scores equal the listed pair, in fencer order
//   - max_rounds: the bout took at most count rounds
//   - never_selects: none of the listed actions was ever attempted
//   - history_len: the rolling history holds exactly count entries
//
// # Deterministic Testing
//
// The bout is driven by rng.New(seed) and a fixed bout ID (bout_id, or
// "test-bout-default"), so transcripts are stable across runs and machines.
// AssertReproducible runs a scenario twice and compares the transcripts
// through goldie.
package harness
