package compliance

// Control catalogs for the built-in frameworks, keyed by control ID.

// ISO/IEC 27001:2013 Annex A controls relevant to serverless workloads.
var iso27001Controls = map[string]string{
	"A.8.1.1":  "Inventory of assets",
	"A.8.1.2":  "Ownership of assets",
	"A.8.2.1":  "Classification of information",
	"A.8.2.2":  "Labelling of information",
	"A.8.2.3":  "Handling of assets",
	"A.8.3.1":  "Management of removable media",
	"A.8.3.2":  "Disposal of media",
	"A.8.3.3":  "Physical media transfer",
	"A.9.1.1":  "Access control policy",
	"A.9.1.2":  "Access to networks and network services",
	"A.9.2.1":  "User registration and de-registration",
	"A.9.2.2":  "User access provisioning",
	"A.9.2.3":  "Management of privileged access rights",
	"A.9.2.4":  "Management of secret authentication information of users",
	"A.9.2.5":  "Review of user access rights",
	"A.9.2.6":  "Removal or adjustment of access rights",
	"A.9.3.1":  "Use of secret authentication information",
	"A.9.4.1":  "Information access restriction",
	"A.9.4.2":  "Secure log-on procedures",
	"A.9.4.3":  "Password management system",
	"A.9.4.4":  "Use of privileged utility programs",
	"A.9.4.5":  "Access control to program source code",
	"A.10.1.1": "Policy on the use of cryptographic controls",
	"A.10.1.2": "Key management",
	"A.12.1.1": "Documented operating procedures",
	"A.12.1.2": "Change management",
	"A.12.1.3": "Capacity management",
	"A.12.1.4": "Separation of development, testing and operational environments",
	"A.12.2.1": "Controls against malware",
	"A.12.3.1": "Information backup",
	"A.12.4.1": "Event logging",
	"A.12.4.2": "Protection of log information",
	"A.12.4.3": "Administrator and operator logs",
	"A.12.4.4": "Clock synchronisation",
	"A.12.5.1": "Installation of software on operational systems",
	"A.12.6.1": "Management of technical vulnerabilities",
	"A.12.6.2": "Restrictions on software installation",
	"A.12.7.1": "Information systems audit controls",
	"A.13.1.1": "Network controls",
	"A.13.1.2": "Security of network services",
	"A.13.1.3": "Separation of networks",
	"A.13.2.1": "Information transfer policies and procedures",
	"A.13.2.2": "Agreements on information transfer",
	"A.13.2.3": "Electronic messaging",
	"A.14.1.1": "Information security requirements analysis and specification",
	"A.14.1.2": "Securing application services on public networks",
	"A.14.1.3": "Protecting application services transactions",
	"A.14.2.1": "Secure development policy",
	"A.14.2.2": "System change control procedures",
	"A.14.2.3": "Technical review of applications after operating platform changes",
	"A.14.2.4": "Restrictions on changes to software packages",
	"A.14.2.5": "Secure system engineering principles",
	"A.14.2.6": "Secure development environment",
	"A.14.2.7": "Outsourced development",
	"A.14.2.8": "System security testing",
	"A.14.2.9": "System acceptance testing",
	"A.14.3.1": "Protection of test data",
	"A.15.1.1": "Information security policy for supplier relationships",
	"A.15.1.2": "Addressing security within supplier agreements",
	"A.15.1.3": "Information and communication technology supply chain",
	"A.15.2.1": "Monitoring and review of supplier services",
	"A.15.2.2": "Managing changes to supplier services",
	"A.16.1.1": "Responsibilities and procedures",
	"A.16.1.2": "Reporting information security events",
	"A.16.1.3": "Reporting information security weaknesses",
	"A.16.1.4": "Assessment of and decision on information security events",
	"A.16.1.5": "Response to information security incidents",
	"A.16.1.6": "Learning from information security incidents",
	"A.16.1.7": "Collection of evidence",
	"A.17.1.1": "Planning information security continuity",
	"A.17.1.2": "Implementing information security continuity",
	"A.17.1.3": "Verify, review and evaluate information security continuity",
	"A.17.2.1": "Availability of information processing facilities",
	"A.18.1.1": "Identification of applicable legislation and contractual requirements",
	"A.18.1.2": "Intellectual property rights",
	"A.18.1.3": "Protection of records",
	"A.18.1.4": "Privacy and protection of personally identifiable information",
	"A.18.1.5": "Regulation of cryptographic controls",
	"A.18.2.1": "Independent review of information security",
	"A.18.2.2": "Compliance with security policies and standards",
	"A.18.2.3": "Technical compliance review",
}

// SOC 2 trust services criteria.
var soc2Controls = map[string]string{
	"CC1.1": "COSO Principle 1: The entity demonstrates a commitment to integrity and ethical values",
	"CC1.2": "COSO Principle 2: The board of directors demonstrates independence from management",
	"CC1.3": "COSO Principle 3: Management establishes structure, authority, and responsibility",
	"CC1.4": "COSO Principle 4: The entity demonstrates a commitment to attract, develop, and retain competent individuals",
	"CC1.5": "COSO Principle 5: The entity holds individuals accountable for their internal control responsibilities",
	"CC2.1": "COSO Principle 6: The entity specifies objectives with sufficient clarity",
	"CC2.2": "COSO Principle 7: The entity identifies and analyzes risks to the achievement of objectives",
	"CC2.3": "COSO Principle 8: The entity considers the potential for fraud in assessing risks",
	"CC3.1": "COSO Principle 9: The entity identifies and assesses changes that could significantly impact the system",
	"CC3.2": "COSO Principle 10: The entity selects and develops control activities",
	"CC3.3": "COSO Principle 11: The entity selects and develops general controls over technology",
	"CC3.4": "COSO Principle 12: The entity deploys control activities through policies and procedures",
	"CC4.1": "COSO Principle 13: The entity obtains or generates and uses relevant, quality information",
	"CC4.2": "COSO Principle 14: The entity internally communicates information necessary to support functioning of internal control",
	"CC5.1": "COSO Principle 15: The entity selects, develops, and performs ongoing and/or separate evaluations",
	"CC5.2": "COSO Principle 16: The entity evaluates and communicates internal control deficiencies",
	"CC5.3": "COSO Principle 17: The entity responds to risks associated with reporting",
	"CC6.1": "Logical and physical access controls",
	"CC6.2": "System access is restricted to authorized users",
	"CC6.3": "Data transmission is protected",
	"CC6.4": "Mobile devices are protected",
	"CC6.5": "Data at rest is protected",
	"CC6.6": "Transmission of data and system outputs is complete and accurate",
	"CC6.7": "System processing is complete and accurate",
	"CC6.8": "System processing is authorized",
	"CC7.1": "System capacity is monitored",
	"CC7.2": "System monitoring includes data and processing integrity",
	"CC7.3": "Alerts are communicated to responsible personnel",
	"CC7.4": "System availability and security incidents are resolved",
	"CC7.5": "System availability and security incidents are identified and communicated",
	"CC8.1": "Change management process and procedures are defined and implemented",
	"CC9.1": "Risk assessment and risk mitigation",
	"A1.1":  "Access controls are implemented",
	"A1.2":  "Logical access security measures protect against threats from sources outside its system boundaries",
	"A1.3":  "Multi-factor authentication or other security measures protect against unauthorized access",
	"PI1.1": "Personal information is collected, used, retained, disclosed, and disposed of in conformity with the commitments in the entity's privacy notice",
	"PI1.2": "Personal information is processed for the purposes identified in the entity's privacy notice",
	"PI1.3": "Personal information is complete and accurate for the purposes identified in the entity's privacy notice",
	"PI1.4": "Personal information processing activities are restricted to those identified in the entity's privacy notice",
	"PI1.5": "Personal information is retained and disposed of in conformity with the commitments in the entity's privacy notice",
}

// NIST Cybersecurity Framework v1.1 subcategories.
var nistCSFControls = map[string]string{
	"ID.AM-1":  "Physical devices and systems within the organization are inventoried",
	"ID.AM-2":  "Software platforms and applications within the organization are inventoried",
	"ID.AM-3":  "Organizational communication and data flows are mapped",
	"ID.AM-4":  "External information systems are catalogued",
	"ID.AM-5":  "Resources (e.g., hardware, devices, data, time, personnel, and software) are prioritized based on their classification, criticality, and business value",
	"ID.AM-6":  "Cybersecurity roles and responsibilities for the entire workforce and third-party stakeholders are established",
	"ID.BE-1":  "The organization's role in the supply chain is identified and communicated",
	"ID.BE-2":  "The organization's place in critical infrastructure and its industry sector is identified and communicated",
	"ID.BE-3":  "Priorities for organizational mission, objectives, and activities are established and communicated",
	"ID.BE-4":  "Dependencies and critical functions for delivery of critical services are established",
	"ID.BE-5":  "Resilience requirements to support delivery of critical services are established for all operating states",
	"ID.GV-1":  "Organizational cybersecurity policy is established and communicated",
	"ID.GV-2":  "Cybersecurity roles and responsibilities are coordinated and aligned with internal roles and external partners",
	"ID.GV-3":  "Legal and regulatory requirements regarding cybersecurity, including privacy and civil liberties obligations, are understood and managed",
	"ID.GV-4":  "Governance and risk management processes address cybersecurity risks",
	"ID.RA-1":  "Asset vulnerabilities are identified and documented",
	"ID.RA-2":  "Cyber threat intelligence is received from information sharing forums and sources",
	"ID.RA-3":  "Threats, both internal and external, are identified and documented",
	"ID.RA-4":  "Potential business impacts and likelihoods are identified",
	"ID.RA-5":  "Threats, vulnerabilities, likelihoods, and impacts are used to determine risk",
	"ID.RA-6":  "Risk responses are identified and prioritized",
	"ID.RM-1":  "Risk management processes are established, managed, and agreed to by organizational stakeholders",
	"ID.RM-2":  "Organizational risk tolerance is determined and clearly expressed",
	"ID.RM-3":  "The organization's determination of risk tolerance is informed by its role in critical infrastructure and sector specific risk analysis",
	"ID.SC-1":  "Cyber supply chain risk management processes are identified, established, assessed, managed, and agreed to by organizational stakeholders",
	"ID.SC-2":  "Suppliers and third party partners of information systems, components, and services are identified, prioritized, and assessed using a cyber supply chain risk assessment process",
	"ID.SC-3":  "Contracts with suppliers and third-party partners are used to implement appropriate measures designed to meet the objectives of an organization's cybersecurity program",
	"ID.SC-4":  "Suppliers and third-party partners are routinely assessed using audits, test results, or other forms of evaluations to confirm they are meeting their contractual obligations",
	"ID.SC-5":  "Response and recovery planning and testing are conducted with suppliers and third-party providers",
	"PR.AC-1":  "Identities and credentials are issued, managed, verified, revoked, and audited for authorized devices, users and processes",
	"PR.AC-2":  "Physical access to assets is managed and protected",
	"PR.AC-3":  "Remote access is managed",
	"PR.AC-4":  "Access permissions and authorizations are managed, incorporating the principles of least privilege and separation of duties",
	"PR.AC-5":  "Network integrity is protected (e.g., network segregation, network segmentation)",
	"PR.AC-6":  "Identities are proofed and bound to credentials and asserted in interactions",
	"PR.AC-7":  "Users, devices, and other assets are authenticated (e.g., single-factor, multi-factor) commensurate with the risk of the transaction",
	"PR.AT-1":  "All users are informed and trained",
	"PR.AT-2":  "Privileged users understand their roles and responsibilities",
	"PR.AT-3":  "Third-party stakeholders (e.g., suppliers, customers, partners) understand their roles and responsibilities",
	"PR.AT-4":  "Senior executives understand their roles and responsibilities",
	"PR.AT-5":  "Physical and cybersecurity personnel understand their roles and responsibilities",
	"PR.DS-1":  "Data-at-rest is protected",
	"PR.DS-2":  "Data-in-transit is protected",
	"PR.DS-3":  "Assets are formally managed throughout removal, transfers, and disposition",
	"PR.DS-4":  "Adequate capacity to ensure availability is maintained",
	"PR.DS-5":  "Protections against data leaks are implemented",
	"PR.DS-6":  "Integrity checking mechanisms are used to verify software, firmware, and information integrity",
	"PR.DS-7":  "The development and testing environment(s) are separate from the production environment",
	"PR.DS-8":  "Integrity checking mechanisms are used to verify hardware integrity",
	"PR.IP-1":  "A baseline configuration of information technology/industrial control systems is created and maintained incorporating security principles",
	"PR.IP-2":  "A System Development Life Cycle to manage systems is implemented",
	"PR.IP-3":  "Configuration change control processes are in place",
	"PR.IP-4":  "Backups of information are conducted, maintained, and tested",
	"PR.IP-5":  "Policy and regulations regarding the physical operating environment for organizational assets are met",
	"PR.IP-6":  "Data is destroyed according to policy",
	"PR.IP-7":  "Protection processes are improved",
	"PR.IP-8":  "Effectiveness of protection technologies is shared",
	"PR.IP-9":  "Response plans (Incident Response and Business Continuity) and recovery plans (Incident Recovery and Disaster Recovery) are in place and managed",
	"PR.IP-10": "Response and recovery plans are tested",
	"PR.IP-11": "Cybersecurity is included in human resources practices",
	"PR.IP-12": "A vulnerability management plan is developed and implemented",
	"PR.MA-1":  "Maintenance and repair of organizational assets are performed and logged, with approved and controlled tools",
	"PR.MA-2":  "Remote maintenance of organizational assets is approved, logged, and performed in a manner that prevents unauthorized access",
	"PR.PT-1":  "Audit/log records are determined, documented, implemented, and reviewed in accordance with policy",
	"PR.PT-2":  "Removable media is protected and its use restricted according to policy",
	"PR.PT-3":  "The principle of least functionality is incorporated by configuring systems to provide only essential capabilities",
	"PR.PT-4":  "Communications and control networks are protected",
	"PR.PT-5":  "Mechanisms (e.g., failsafe, load balancing, hot swap) are implemented to achieve resilience requirements in normal and adverse situations",
	"DE.AE-1":  "A baseline of network operations and expected data flows for users and systems is established and managed",
	"DE.AE-2":  "Detected events are analyzed to understand attack targets and methods",
	"DE.AE-3":  "Event data are collected and correlated from multiple sources and sensors",
	"DE.AE-4":  "Impact of events is determined",
	"DE.AE-5":  "Incident alert thresholds are established",
	"DE.CM-1":  "The network is monitored to detect potential cybersecurity events",
	"DE.CM-2":  "The physical environment is monitored to detect potential cybersecurity events",
	"DE.CM-3":  "Personnel activity is monitored to detect potential cybersecurity events",
	"DE.CM-4":  "Malicious code is detected",
	"DE.CM-5":  "Unauthorized mobile code is detected",
	"DE.CM-6":  "External service provider activity is monitored to detect potential cybersecurity events",
	"DE.CM-7":  "Monitoring for unauthorized personnel, connections, devices, and software is performed",
	"DE.CM-8":  "Vulnerability scans are performed",
	"DE.DP-1":  "Roles and responsibilities for detection are well defined to ensure accountability",
	"DE.DP-2":  "Detection activities comply with all applicable requirements",
	"DE.DP-3":  "Detection processes are tested",
	"DE.DP-4":  "Event detection information is communicated",
	"DE.DP-5":  "Detection processes are continuously improved",
	"RS.RP-1":  "Response plan is executed during or after an incident",
	"RS.CO-1":  "Personnel know their roles and order of operations when a response is needed",
	"RS.CO-2":  "Incidents are reported consistent with established criteria",
	"RS.CO-3":  "Information is shared consistent with response plans",
	"RS.CO-4":  "Coordination with stakeholders occurs consistent with response plans",
	"RS.CO-5":  "Voluntary information sharing occurs with external stakeholders to achieve broader cybersecurity situational awareness",
	"RS.AN-1":  "Notifications from detection systems are investigated",
	"RS.AN-2":  "The impact of the incident is understood",
	"RS.AN-3":  "Forensics are performed",
	"RS.AN-4":  "Incidents are categorized consistent with response plans",
	"RS.AN-5":  "Processes are established to receive, analyze and respond to vulnerabilities disclosed to the organization from internal and external sources",
	"RS.MI-1":  "Incidents are contained",
	"RS.MI-2":  "Incidents are mitigated",
	"RS.MI-3":  "Newly identified vulnerabilities are mitigated or documented as accepted risks",
	"RS.IM-1":  "Response plans incorporate lessons learned",
	"RS.IM-2":  "Response strategies are updated",
	"RC.RP-1":  "Recovery plan is executed during or after a cybersecurity incident",
	"RC.IM-1":  "Recovery plans incorporate lessons learned",
	"RC.IM-2":  "Recovery strategies are updated",
	"RC.CO-1":  "Public relations are managed",
	"RC.CO-2":  "Reputation is repaired after an incident",
	"RC.CO-3":  "Recovery activities are communicated to internal and external stakeholders as well as executive and management teams",
}
