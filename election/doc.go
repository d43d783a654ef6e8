// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election manages the lifecycle of the election.

# State

	is_open  results_revealed
	false    false             initial, and after every reset
	true     false             voting
	false    true              results published

Results can only be revealed while voting is closed. Opening the election
does not hide results that were already revealed.

# Reset

Reset clears every tally and vote flag in one transaction and forces the
election closed with results hidden. Resetting twice leaves the same state
as resetting once.
*/
package election
