// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - MemberLoginRequest: member_number, id_card
  - AdminLoginRequest: username, password
  - Ballot: president_id, member_ids, ethics_accepted
  - ToggleElectionRequest: is_open (optional)
  - ResetVotesRequest: confirm
  - CandidateRequest: id, name, bio, photo_url (bio and photo_url optional)
  - ImportMembersRequest: members (raw roster rows)
  - DeleteMembersRequest: member_ids

# Response Types

Types for JSON responses:

  - LoginResponse: token, user
  - SessionResponse: user_type, user
  - SuccessResponse, ConfigResponse, DeleteMembersResponse
  - VoterStatusResponse: is_open, has_voted
  - ErrorResponse: error, code

# Domain Types

  - Member: roster entry with fee status, voted flag and ethics answer
  - Candidate: profile plus president/member counters
  - Session: opaque token with role and expiry
  - ElectionConfig: is_open, results_revealed
  - ValidatedBallot: normalized ballot handed to the tally

A Ballot is never persisted. Only candidate counters and the member's
has_voted/ethics_accepted fields survive a submission.

# Constants

Fee status:

	FeePaid    = "paid"
	FeePending = "pending"

Session roles:

	RoleMember = "member"
	RoleAdmin  = "admin"
*/
package models
