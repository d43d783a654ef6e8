// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting implements ballot submission.

A ballot names one president, up to ten member candidates and an answer to
the ethics code question:

	{"president_id": "...", "member_ids": ["...", "..."], "ethics_accepted": true}

The president always counts as a member choice too. The effective member
set is the president followed by member_ids, deduplicated, so a ballot
credits each candidate at most once per counter.

Submission runs three stages:

  - Session: the token must belong to a live member session.
  - Validator: election open, member has not voted, ballot well formed,
    candidates known. Checks stop at the first failure.
  - Aggregator: one transaction marks the member voted and bumps the
    counters. Nothing links the member to the choices afterwards.
*/
package voting
