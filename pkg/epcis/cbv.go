package epcis

// Core business vocabulary values used by the adapters
const (
	BizStepCommissioning = "urn:epcglobal:cbv:bizstep:commissioning"
	BizStepPacking       = "urn:epcglobal:cbv:bizstep:packing"
	BizStepUnpacking     = "urn:epcglobal:cbv:bizstep:unpacking"
	BizStepShipping      = "urn:epcglobal:cbv:bizstep:shipping"
	BizStepReceiving     = "urn:epcglobal:cbv:bizstep:receiving"
	BizStepDecommission  = "urn:epcglobal:cbv:bizstep:decommissioning"

	DispositionActive          = "urn:epcglobal:cbv:disp:active"
	DispositionInProgress      = "urn:epcglobal:cbv:disp:in_progress"
	DispositionInTransit       = "urn:epcglobal:cbv:disp:in_transit"
	DispositionInactive        = "urn:epcglobal:cbv:disp:inactive"
	DispositionContainerClosed = "urn:epcglobal:cbv:disp:container_closed"

	BizTransactionPO     = "urn:epcglobal:cbv:btt:po"
	BizTransactionDesadv = "urn:epcglobal:cbv:btt:desadv"

	SourceDestOwningParty     = "urn:epcglobal:cbv:sdt:owning_party"
	SourceDestPossessingParty = "urn:epcglobal:cbv:sdt:possessing_party"
	SourceDestLocation        = "urn:epcglobal:cbv:sdt:location"
)

// ILMD attribute names (local names of the cbvmda elements)
const (
	ILMDLotNumber             = "lotNumber"
	ILMDExpirationDate        = "itemExpirationDate"
	ILMDManufactureDate       = "productionDate"
	ILMDUnitOfMeasure         = "measurementUnitCode"
	ILMDAdditionalTradeItemID = "additionalTradeItemIdentification"
	ILMDCountryOfOrigin       = "countryOfOrigin"
)
