package chain

// CrowdFundingABI 众筹合约内置ABI
const CrowdFundingABI = `[
	{
		"inputs": [
			{"name": "_owner", "type": "address"},
			{"name": "_title", "type": "string"},
			{"name": "_description", "type": "string"},
			{"name": "_target", "type": "uint256"},
			{"name": "_deadline", "type": "uint256"},
			{"name": "_image", "type": "string"}
		],
		"name": "createCampaign",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "_id", "type": "uint256"}],
		"name": "donateToCampaign",
		"outputs": [],
		"stateMutability": "payable",
		"type": "function"
	},
	{
		"inputs": [{"name": "_id", "type": "uint256"}],
		"name": "withdrawFunds",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "_id", "type": "uint256"}],
		"name": "deleteCampaign",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "getCampaigns",
		"outputs": [
			{
				"components": [
					{"name": "id", "type": "uint256"},
					{"name": "owner", "type": "address"},
					{"name": "title", "type": "string"},
					{"name": "description", "type": "string"},
					{"name": "target", "type": "uint256"},
					{"name": "deadline", "type": "uint256"},
					{"name": "amountCollected", "type": "uint256"},
					{"name": "image", "type": "string"},
					{"name": "donators", "type": "address[]"},
					{"name": "donations", "type": "uint256[]"},
					{"name": "withdrawn", "type": "bool"}
				],
				"name": "",
				"type": "tuple[]"
			}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "id", "type": "uint256"},
			{"indexed": true, "name": "owner", "type": "address"},
			{"indexed": false, "name": "target", "type": "uint256"}
		],
		"name": "CampaignCreated",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "id", "type": "uint256"},
			{"indexed": true, "name": "donator", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"}
		],
		"name": "DonationReceived",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "id", "type": "uint256"},
			{"indexed": true, "name": "owner", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"}
		],
		"name": "FundsWithdrawn",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "id", "type": "uint256"}
		],
		"name": "CampaignDeleted",
		"type": "event"
	}
]`

// 合约方法名
const (
	methodGetCampaigns     = "getCampaigns"
	methodCreateCampaign   = "createCampaign"
	methodDonateToCampaign = "donateToCampaign"
	methodWithdrawFunds    = "withdrawFunds"
	methodDeleteCampaign   = "deleteCampaign"
)
