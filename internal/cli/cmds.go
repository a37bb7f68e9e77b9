package cli

func regCommands() {
	//DID lifecycle
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(closeCmd)

	//Document changes
	rootCmd.AddCommand(addServiceCmd)
	rootCmd.AddCommand(removeServiceCmd)
	rootCmd.AddCommand(addVerificationMethodCmd)
	rootCmd.AddCommand(removeVerificationMethodCmd)

	//Read only
	rootCmd.AddCommand(resolveCmd)

	//Funding
	rootCmd.AddCommand(airdropCmd)
}
