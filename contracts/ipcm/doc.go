/*
Package ipcm contains implementation of the IPCM (InterPlanetary CID Mapping)
contract deployed in the Octopus chain.

IPCM contract tracks a mutable pointer from a token identifier to an IPFS CID.
The contract does not validate the CID shape, it stores opaque strings. Every
mapping update publishes both the previous and the new value, so the complete
value history of any token can be replayed from the notification log without a
dedicated history table.

The contract is controlled by a single owner account set once via initialize.
Only the owner can change mappings or hand the contract over to another owner.

# Contract notifications

UpdateMapping notification. This notification is produced when the owner
changes the CID a token resolves to.

	UpdateMapping:
	  - name: tokenID
	    type: String
	  - name: oldCID
	    type: String
	  - name: newCID
	    type: String
	  - name: caller
	    type: Hash160

TransferOwnership notification. This notification is produced when the
contract is handed over to a new owner.

	TransferOwnership:
	  - name: oldOwner
	    type: Hash160
	  - name: newOwner
	    type: Hash160
*/
package ipcm

/*
Contract storage model.

# Summary
Current conventions:
 <tokenID>: UTF-8 string identifier of a token

Key-value storage format:
 - 'contractOwner' -> interop.Hash160
   contract owner account, absent until initialize
 - 'm<tokenID>' -> string
   current CID of the token

# Mappings
Contract stores only the current CID of each token. Historical values are
available exclusively through UpdateMapping notifications, replayed in
emission order.
*/
