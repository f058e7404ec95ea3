/*
Package gov implements stake-weighted governance over the treasury.

Any stake holder can propose to send an amount of the treasury funds to a
recipient. Stake holders vote on a proposal with the weight of their stake.
Once the accumulated weight reaches the quorum, any stake holder can
finalize the proposal, which releases the funds.

A proposal is either open or finalized. There is no rejection and no
expiry: a proposal that never reaches the quorum stays open forever.
*/
package gov
