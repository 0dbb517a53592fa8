/*
Package nft contains implementation of the Octopus NFT contract deployed in
the Octopus chain.

NFT contract tracks which account holds each token, the set of tokens each
account holds and, for every token, the key of its entry in the associated
IPCM contract. The three indexes are updated together within a single
invocation, so they stay mutually consistent: a failed precondition aborts
the whole call before any write is committed.

Tokens are created by the contract admin (mint), move between accounts by
their holders (transfer) and are destroyed by their holders (burn). The IPCM
contract address is stored at initialization for reference, the NFT contract
never invokes it directly.

# Contract notifications

Mint notification. This notification is produced when the admin creates a
new token.

	Mint:
	  - name: tokenID
	    type: String
	  - name: owner
	    type: Hash160
	  - name: ipcmKey
	    type: String

Transfer notification. This notification is produced when a token changes
its holder.

	Transfer:
	  - name: tokenID
	    type: String
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160

Burn notification. This notification is produced when a token is destroyed.

	Burn:
	  - name: tokenID
	    type: String
	  - name: owner
	    type: Hash160
*/
package nft

/*
Contract storage model.

# Summary
Current conventions:
 <tokenID>: UTF-8 string identifier of a token
 <holder>: 20-byte account of the token holder

Key-value storage format:
 - 'contractAdmin' -> interop.Hash160
   contract admin account, absent until initialize
 - 'contractIPCM' -> interop.Hash160
   associated IPCM contract reference
 - 't<tokenID>' -> interop.Hash160
   current holder of the token; key presence denotes a live token
 - 'o<holder>' -> std.Serialize([]string)
   token IDs held by the account, in acquisition order
 - 'i<tokenID>' -> string
   key of the token's entry in the IPCM contract, present iff the token is

# Tokens
For performance of holder queries, tokens are additionally indexed by their
holders. The per-holder list keeps acquisition order; removal rebuilds the
list without the target ID, which is linear in the holder's list size.
*/
