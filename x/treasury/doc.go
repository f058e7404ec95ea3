/*
Package treasury keeps the shared pool of funds controlled by governance.

Anyone may deposit into the treasury. Funds leave it only through Disburse,
which the governance engine calls once a proposal is finalized. The funds
are handed over to a Payer, which delivers them to the recipient.
*/
package treasury
