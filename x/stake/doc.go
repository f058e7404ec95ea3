/*
Package stake implements the stake ledger. Stake units are held by
investors and determine who may take part in governance and how much their
vote weighs.

The ledger is read by the governance engine through its BalanceOf and
TotalSupply methods. Mint and Transfer are meant for genesis and for the
tooling around the engine, never for governance itself.
*/
package stake
